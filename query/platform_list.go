package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// PlatformListInput requests the platform catalog.
type PlatformListInput struct{}

// Type implements gocommand.Message.
func (PlatformListInput) Type() string {
	return "query.platform.list"
}

// Validate implements gocommand.Message.
func (PlatformListInput) Validate() error {
	return nil
}

// PlatformListQuery serves the catalog snapshot ordered by name.
type PlatformListQuery struct {
	catalog types.PlatformCatalog
}

// NewPlatformListQuery constructs the query helper.
func NewPlatformListQuery(catalog types.PlatformCatalog) *PlatformListQuery {
	return &PlatformListQuery{catalog: catalog}
}

var _ gocommand.Querier[PlatformListInput, []types.Platform] = (*PlatformListQuery)(nil)

// Query returns every cached platform. It never touches storage.
func (q *PlatformListQuery) Query(_ context.Context, _ PlatformListInput) ([]types.Platform, error) {
	if q.catalog == nil {
		return nil, types.ErrMissingPlatformCatalog
	}
	return q.catalog.All(), nil
}
