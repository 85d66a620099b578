package profile

import (
	"time"

	"github.com/uptrace/bun"
)

// Record models a players row: one gamertag per (member, platform) pair.
type Record struct {
	bun.BaseModel `bun:"table:players"`

	ID         int64     `bun:"id,pk,autoincrement"`
	MemberID   int64     `bun:"member_id,notnull"`
	Gamertag   string    `bun:"gamertag,notnull"`
	PlatformID int64     `bun:"platform_id,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// itemRow is the scan target for the players/platforms join.
type itemRow struct {
	PlatformID   int64  `bun:"platform_id"`
	PlatformName string `bun:"platform_name"`
	IconRef      int64  `bun:"icon_ref"`
	Gamertag     string `bun:"gamertag"`
}
