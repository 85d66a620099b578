// Package query hosts the read-side go-command facades: the platform list,
// member profiles, platform rosters, guild prefixes and the activity feed.
package query
