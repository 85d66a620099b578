package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-gamerdb/pkg/storage"
	"github.com/goliatone/go-gamerdb/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed profile repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
}

type profileStore interface {
	repository.Repository[*Record]
}

// Repository implements types.ProfileRepository using Bun. Batch writes run
// against the DB handle in a single transaction; reads go through the generic
// repository.
type Repository struct {
	profileStore
	db    *bun.DB
	clock types.Clock
}

// NewRepository constructs the default profile repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("profile: db or repository required")
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
		profileStore: repo,
		db:           db,
		clock:        clock,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.ProfileRepository        = (*Repository)(nil)
)

// RegisterMany upserts every (member, platform) edge in one statement inside a
// transaction. Either every edge is written or none is. When entries repeat a
// platform the last gamertag wins.
func (r *Repository) RegisterMany(ctx context.Context, memberID int64, entries []types.ProfileEntry) (int, error) {
	if memberID == 0 {
		return 0, types.ErrMemberIDRequired
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if r.db == nil {
		return 0, errors.New("profile: db required for writes")
	}

	records, err := r.buildRecords(memberID, entries)
	if err != nil {
		return 0, err
	}

	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&records).
			On("CONFLICT (member_id, platform_id) DO UPDATE").
			Set("gamertag = EXCLUDED.gamertag").
			Set("updated_at = EXCLUDED.updated_at").
			Returning("NULL").
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, storage.Classify(err)
	}
	return len(records), nil
}

// UnregisterMany removes the member's edges for the supplied platforms.
// Platforms the member never registered are ignored.
func (r *Repository) UnregisterMany(ctx context.Context, memberID int64, platformIDs []int64) (int, error) {
	if memberID == 0 {
		return 0, types.ErrMemberIDRequired
	}
	ids := dedupeIDs(platformIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	if r.db == nil {
		return 0, errors.New("profile: db required for writes")
	}

	var removed int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*Record)(nil)).
			Where("member_id = ?", memberID).
			Where("platform_id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, storage.Classify(err)
	}
	return int(removed), nil
}

// ProfileFor lists the member's gamertags joined against the platforms table,
// ordered by platform name.
func (r *Repository) ProfileFor(ctx context.Context, memberID int64) ([]types.ProfileItem, error) {
	if memberID == 0 {
		return nil, types.ErrMemberIDRequired
	}
	if r.db == nil {
		return nil, errors.New("profile: db required for reads")
	}
	var rows []itemRow
	err := r.db.NewSelect().
		TableExpr("players AS p").
		ColumnExpr("p.platform_id AS platform_id").
		ColumnExpr("pl.name AS platform_name").
		ColumnExpr("pl.icon_ref AS icon_ref").
		ColumnExpr("p.gamertag AS gamertag").
		Join("JOIN platforms AS pl ON pl.id = p.platform_id").
		Where("p.member_id = ?", memberID).
		OrderExpr("pl.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, storage.Classify(err)
	}
	items := make([]types.ProfileItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, types.ProfileItem{
			PlatformID:   row.PlatformID,
			PlatformName: row.PlatformName,
			IconRef:      row.IconRef,
			Gamertag:     row.Gamertag,
		})
	}
	return items, nil
}

// MembersFor lists every member registered on the platform.
func (r *Repository) MembersFor(ctx context.Context, platformID int64) ([]types.Membership, error) {
	if platformID <= 0 {
		return nil, types.ErrPlatformIDRequired
	}
	records, _, err := r.List(ctx, selectPlatformID(platformID))
	if err != nil {
		return nil, storage.Classify(err)
	}
	out := make([]types.Membership, 0, len(records))
	for _, rec := range records {
		out = append(out, types.Membership{
			MemberID: rec.MemberID,
			Gamertag: rec.Gamertag,
		})
	}
	return out, nil
}

func (r *Repository) buildRecords(memberID int64, entries []types.ProfileEntry) ([]Record, error) {
	now := r.clock.Now()
	index := make(map[int64]int, len(entries))
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry.PlatformID <= 0 {
			return nil, types.ErrPlatformIDRequired
		}
		tag := strings.TrimSpace(entry.Gamertag)
		if tag == "" {
			return nil, types.ErrGamertagRequired
		}
		if pos, ok := index[entry.PlatformID]; ok {
			records[pos].Gamertag = tag
			continue
		}
		index[entry.PlatformID] = len(records)
		records = append(records, Record{
			MemberID:   memberID,
			Gamertag:   tag,
			PlatformID: entry.PlatformID,
			UpdatedAt:  now,
		})
	}
	return records, nil
}

func selectPlatformID(platformID int64) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("platform_id = ?", platformID)
	}
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
