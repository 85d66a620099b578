package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// PrefixQueryInput identifies the guild. A zero guild id, as in direct
// messages, resolves to the default prefix.
type PrefixQueryInput struct {
	GuildID int64
}

// Type implements gocommand.Message.
func (PrefixQueryInput) Type() string {
	return "query.guild.prefix"
}

// Validate implements gocommand.Message.
func (PrefixQueryInput) Validate() error {
	return nil
}

// PrefixQuery returns the effective command prefix of a guild.
type PrefixQuery struct {
	store types.PrefixStore
}

// NewPrefixQuery constructs the prefix query.
func NewPrefixQuery(store types.PrefixStore) *PrefixQuery {
	return &PrefixQuery{store: store}
}

var _ gocommand.Querier[PrefixQueryInput, string] = (*PrefixQuery)(nil)

// Query never fails once wired; storage errors resolve to the default prefix.
func (q *PrefixQuery) Query(ctx context.Context, input PrefixQueryInput) (string, error) {
	if q.store == nil {
		return "", types.ErrMissingGuildSettings
	}
	return q.store.GetPrefix(ctx, input.GuildID), nil
}
