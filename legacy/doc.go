// Package legacy reads data left behind by the first generation of the bot:
// the single-table `database` store, where each platform is a text column and
// each row a player, and the platforms file that maps names to emoji ids.
// Both produce seeds for command.BulkImportCommand.
package legacy
