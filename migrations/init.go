package migrations

import (
	"io/fs"

	gamerdb "github.com/goliatone/go-gamerdb"
)

func init() {
	coreFS, err := fs.Sub(gamerdb.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register("gamerdb", coreFS)
}
