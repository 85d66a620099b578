package query

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// MemberFilter reports whether a member should be listed, typically whether
// they still belong to the guild the request came from.
type MemberFilter func(memberID int64) bool

// UsersForInput names the platform whose roster is requested.
type UsersForInput struct {
	Platform string
	Filter   MemberFilter
}

// Type implements gocommand.Message.
func (UsersForInput) Type() string {
	return "query.platform.members"
}

// Validate implements gocommand.Message.
func (input UsersForInput) Validate() error {
	if strings.TrimSpace(input.Platform) == "" {
		return types.ErrPlatformNameRequired
	}
	return nil
}

// UsersForResult is the roster of a platform.
type UsersForResult struct {
	Platform types.Platform
	Members  []types.Membership
}

// UsersForQuery lists the members registered on a platform.
type UsersForQuery struct {
	catalog types.PlatformCatalog
	repo    types.ProfileRepository
}

// NewUsersForQuery constructs the roster query.
func NewUsersForQuery(catalog types.PlatformCatalog, repo types.ProfileRepository) *UsersForQuery {
	return &UsersForQuery{catalog: catalog, repo: repo}
}

var _ gocommand.Querier[UsersForInput, UsersForResult] = (*UsersForQuery)(nil)

// Query resolves the platform through the catalog and returns its members,
// dropping any the filter rejects.
func (q *UsersForQuery) Query(ctx context.Context, input UsersForInput) (UsersForResult, error) {
	if q.catalog == nil {
		return UsersForResult{}, types.ErrMissingPlatformCatalog
	}
	if q.repo == nil {
		return UsersForResult{}, types.ErrMissingProfileRepository
	}
	if err := input.Validate(); err != nil {
		return UsersForResult{}, err
	}
	platform, ok := q.catalog.Lookup(input.Platform)
	if !ok {
		return UsersForResult{}, types.PlatformNotFound(types.NormalizeName(input.Platform))
	}
	members, err := q.repo.MembersFor(ctx, platform.ID)
	if err != nil {
		return UsersForResult{}, err
	}
	if input.Filter != nil {
		kept := members[:0]
		for _, member := range members {
			if input.Filter(member.MemberID) {
				kept = append(kept, member)
			}
		}
		members = kept
	}
	if members == nil {
		members = []types.Membership{}
	}
	return UsersForResult{Platform: platform, Members: members}, nil
}
