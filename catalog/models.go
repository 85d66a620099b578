package catalog

import (
	"time"

	"github.com/uptrace/bun"
)

// Record models the persisted platforms row.
type Record struct {
	bun.BaseModel `bun:"table:platforms"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	IconRef   int64     `bun:"icon_ref,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
