// Package command exposes go-command compatible handlers for every gamerdb
// mutation: platform catalog changes, guild prefix updates, direct profile
// registration and bulk imports. Handlers record activity and fire hooks after
// a confirmed write. The service layer wires them and any transport (the chat
// gateway or the CLI) can invoke them.
package command
