package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-gamerdb/pkg/types"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	legacyTable  = "database"
	playerColumn = "player"
	idColumn     = "id"
)

// Snapshot is everything read from a legacy store.
type Snapshot struct {
	// Platforms lists the platform columns found in the table, normalized.
	Platforms []string
	Players   []types.PlayerSeed
	// Skipped counts rows without a usable player id.
	Skipped int
}

// Open opens a legacy sqlite file read-only.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Read scans the legacy `database` table. Every non-empty platform cell
// becomes a player seed; empty strings and NULLs mean unregistered.
func Read(ctx context.Context, db *bun.DB) (Snapshot, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q", legacyTable))
	if err != nil {
		return Snapshot{}, fmt.Errorf("legacy: read table: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Snapshot{}, err
	}
	playerIdx := -1
	platformCols := make(map[int]string, len(columns))
	for idx, column := range columns {
		name := types.NormalizeName(column)
		switch name {
		case playerColumn:
			playerIdx = idx
		case idColumn:
		default:
			platformCols[idx] = name
		}
	}
	if playerIdx < 0 {
		return Snapshot{}, fmt.Errorf("legacy: table %q has no %q column", legacyTable, playerColumn)
	}

	snapshot := Snapshot{Platforms: make([]string, 0, len(platformCols))}
	for _, name := range platformCols {
		snapshot.Platforms = append(snapshot.Platforms, name)
	}
	sort.Strings(snapshot.Platforms)

	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Snapshot{}, fmt.Errorf("legacy: scan row: %w", err)
		}
		memberID, ok := parseMemberID(values[playerIdx])
		if !ok {
			snapshot.Skipped++
			continue
		}
		for idx := range columns {
			platform, isPlatform := platformCols[idx]
			if !isPlatform || !values[idx].Valid {
				continue
			}
			gamertag := strings.TrimSpace(values[idx].String)
			if gamertag == "" {
				continue
			}
			snapshot.Players = append(snapshot.Players, types.PlayerSeed{
				MemberID:     memberID,
				Gamertag:     gamertag,
				PlatformName: platform,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

func parseMemberID(value sql.NullString) (int64, bool) {
	if !value.Valid {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscan(strings.TrimSpace(value.String), &id); err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
