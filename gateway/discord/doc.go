// Package discord exposes the gamerdb service on Discord through slash
// commands, the select menu registration flow and the legacy prefix text
// commands.
package discord
