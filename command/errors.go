package command

import (
	"errors"

	"github.com/goliatone/go-gamerdb/pkg/types"
)

var (
	// ErrPlatformManagementDisabled indicates platform add/delete is gated off.
	ErrPlatformManagementDisabled = errors.New("gamerdb: platform management disabled")
	// ErrImportDisabled indicates bulk import is gated off.
	ErrImportDisabled = errors.New("gamerdb: import disabled")
	// ErrPlatformRefRequired indicates neither a platform id nor name was given.
	ErrPlatformRefRequired = errors.New("gamerdb: platform id or name required")
	// ErrPlatformsRequired indicates a profile command named no platforms.
	ErrPlatformsRequired = errors.New("gamerdb: platforms required")
	// ErrNoValidPlatforms indicates none of the supplied platform names exist.
	ErrNoValidPlatforms = errors.New("gamerdb: no valid platforms")
	// ErrSeedsRequired indicates a bulk import without platforms or players.
	ErrSeedsRequired = errors.New("gamerdb: import requires platforms or players")
	// ErrMemberIDRequired indicates a member identifier was omitted.
	ErrMemberIDRequired = types.ErrMemberIDRequired
	// ErrGuildIDRequired indicates a guild identifier was omitted.
	ErrGuildIDRequired = types.ErrGuildIDRequired
)
