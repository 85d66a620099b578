package catalog

import (
	"context"
	"errors"

	"github.com/goliatone/go-gamerdb/pkg/storage"
	"github.com/goliatone/go-gamerdb/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires dependencies for the Bun-backed platform store.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
}

type platformStore interface {
	repository.Repository[*Record]
}

// Repository implements types.PlatformRepository.
type Repository struct {
	platformStore
	db    *bun.DB
	clock types.Clock
}

// NewRepository constructs the default platform repository. The DB handle is
// required for deletes because they run in a transaction spanning two tables.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("catalog: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(*Record) uuid.UUID {
				return uuid.Nil
			},
			SetID: func(*Record, uuid.UUID) {},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	db := cfg.DB
	if db == nil {
		if withDB, ok := repo.(interface{ DB() *bun.DB }); ok {
			db = withDB.DB()
		}
	}
	return &Repository{
		platformStore: repo,
		db:            db,
		clock:         clock,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.PlatformRepository       = (*Repository)(nil)
)

// ListPlatforms returns every platform ordered by name.
func (r *Repository) ListPlatforms(ctx context.Context) ([]types.Platform, error) {
	rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("name ASC")
	})
	if err != nil {
		return nil, storage.Classify(err)
	}
	out := make([]types.Platform, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

// CreatePlatform inserts a platform. Unique violations are reported as
// duplicate name or duplicate icon depending on which column collided.
func (r *Repository) CreatePlatform(ctx context.Context, name string, iconRef int64) (*types.Platform, error) {
	name = types.NormalizeName(name)
	if name == "" {
		return nil, types.ErrPlatformNameRequired
	}
	if iconRef == 0 {
		return nil, types.ErrIconRefRequired
	}
	created, err := r.Create(ctx, &Record{
		Name:      name,
		IconRef:   iconRef,
		CreatedAt: r.clock.Now(),
	})
	if err != nil {
		return nil, r.classifyCreateError(ctx, name, iconRef, err)
	}
	if created == nil || created.ID == 0 {
		created, err = r.Get(ctx, repository.SelectBy("name", "=", name))
		if err != nil {
			return nil, storage.Classify(err)
		}
	}
	platform := toDomain(created)
	return &platform, nil
}

// DeletePlatform removes the platform and every players row that references
// it inside one transaction. The explicit players delete keeps the cascade
// intact on connections opened without foreign key enforcement.
func (r *Repository) DeletePlatform(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, types.ErrPlatformIDRequired
	}
	if r.db == nil {
		return false, errors.New("catalog: db required for deletes")
	}
	var removed bool
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			TableExpr("players").
			Where("platform_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*Record)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = affected > 0
		return nil
	})
	if err != nil {
		return false, storage.Classify(err)
	}
	return removed, nil
}

func (r *Repository) classifyCreateError(ctx context.Context, name string, iconRef int64, err error) error {
	if !storage.IsUniqueViolation(err) {
		return storage.Classify(err)
	}
	taken, lookupErr := r.nameTaken(ctx, name)
	switch {
	case lookupErr != nil:
		return types.StorageConstraint(err)
	case taken:
		return types.DuplicatePlatformName(name, err)
	default:
		return types.DuplicatePlatformIcon(iconRef, err)
	}
}

func (r *Repository) nameTaken(ctx context.Context, name string) (bool, error) {
	rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("name = ?", name).Limit(1)
	})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func toDomain(record *Record) types.Platform {
	if record == nil {
		return types.Platform{}
	}
	return types.Platform{
		ID:      record.ID,
		Name:    record.Name,
		IconRef: record.IconRef,
	}
}
