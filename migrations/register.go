package migrations

import (
	"io/fs"
	"sort"
	"strings"
	"sync"
)

// Source is a labelled filesystem rooted at a migrations directory. Root
// files hold PostgreSQL migrations and the sqlite/ subdirectory holds the
// SQLite overrides.
type Source struct {
	Label string
	FS    fs.FS
}

var (
	mu      sync.RWMutex
	sources []Source
)

// Register records a filesystem that contains gamerdb migrations. Callers can
// then feed all registered sources into go-persistence-bun via Sources().
func Register(label string, fsys fs.FS) {
	if fsys == nil {
		return
	}
	mu.Lock()
	sources = append(sources, Source{Label: label, FS: fsys})
	mu.Unlock()
}

// Sources returns a copy of all registered migration sources.
func Sources() []Source {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}

// UpFiles lists the forward migration files for the dialect in apply order.
// Any dialect other than "sqlite" resolves to the root PostgreSQL set.
func UpFiles(fsys fs.FS, dialect string) ([]string, error) {
	pattern := "*.up.sql"
	if strings.EqualFold(dialect, "sqlite") {
		pattern = "sqlite/*.up.sql"
	}
	entries, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	return entries, nil
}

// SplitStatements breaks a migration file into executable statements,
// dropping comment lines.
func SplitStatements(sql string) []string {
	var (
		builder    strings.Builder
		statements []string
	)
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		}
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}
