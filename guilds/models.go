package guilds

import (
	"time"

	"github.com/uptrace/bun"
)

// Record models the guilds row. The primary key is the guild snowflake.
type Record struct {
	bun.BaseModel `bun:"table:guilds"`

	ID        int64     `bun:"id,pk"`
	Prefix    string    `bun:"prefix,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
