package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// ProfileQueryInput identifies the member whose profile is requested.
type ProfileQueryInput struct {
	MemberID int64
}

// Type implements gocommand.Message.
func (ProfileQueryInput) Type() string {
	return "query.profile"
}

// Validate implements gocommand.Message.
func (input ProfileQueryInput) Validate() error {
	if input.MemberID == 0 {
		return types.ErrMemberIDRequired
	}
	return nil
}

// ProfileQuery fetches a member's gamertags joined with platform details.
type ProfileQuery struct {
	repo types.ProfileRepository
}

// NewProfileQuery constructs the profile query helper.
func NewProfileQuery(repo types.ProfileRepository) *ProfileQuery {
	return &ProfileQuery{repo: repo}
}

var _ gocommand.Querier[ProfileQueryInput, []types.ProfileItem] = (*ProfileQuery)(nil)

// Query returns the profile ordered by platform name. A member without
// registrations gets an empty slice.
func (q *ProfileQuery) Query(ctx context.Context, input ProfileQueryInput) ([]types.ProfileItem, error) {
	if q.repo == nil {
		return nil, types.ErrMissingProfileRepository
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return q.repo.ProfileFor(ctx, input.MemberID)
}
