package db

import (
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations
var migrations embed.FS

const migrationTable = "schema_migrations"

// Migrate applies each embedded file of the driver's directory at most once.
func Migrate(cli *sql.DB, driver string) error {
	root := path.Join("migrations", driver)
	entries, err := fs.ReadDir(migrations, root)
	if err != nil {
		return errors.Wrapf(err, "read migrations for %s", driver)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	_, err = cli.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
	name       VARCHAR(255) NOT NULL PRIMARY KEY,
	applied_at BIGINT       NOT NULL
)`)
	if err != nil {
		return errors.Wrap(err, "ensure migration table")
	}

	for _, name := range files {
		var n int
		row := cli.QueryRow(`SELECT COUNT(*) FROM `+migrationTable+` WHERE name = ?`, name)
		if err = row.Scan(&n); err != nil {
			return errors.Wrapf(err, "check migration %s", name)
		}
		if n > 0 {
			continue
		}

		content, err := fs.ReadFile(migrations, path.Join(root, name))
		if err != nil {
			return errors.Wrapf(err, "read migration %s", name)
		}
		// DDL is not transactional in mysql; every statement is idempotent instead
		for _, stmt := range SplitStatements(string(content)) {
			if _, err = cli.Exec(stmt); err != nil {
				return errors.Wrapf(err, "apply migration %s", name)
			}
		}
		_, err = cli.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			name, time.Now().UnixMilli())
		if err != nil {
			return errors.Wrapf(err, "record migration %s", name)
		}
		log.Infof("migration %s applied", name)
	}
	return nil
}

// SplitStatements splits a script on semicolons that end a line.
func SplitStatements(script string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			out = append(out, stmt)
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}
