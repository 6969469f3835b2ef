package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var migrationNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

// ValidateDir checks every .sql file in dir: the name carries a unique 14 digit version, and the
// body has an Up section followed by a Down section. All problems are reported together.
func ValidateDir(fsys fs.FS, dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var problems error
	versions := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		match := migrationNameRe.FindStringSubmatch(name)
		if match == nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: expected YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		if prev, dup := versions[match[1]]; dup {
			problems = multierr.Append(problems, fmt.Errorf("%s: version %s already used by %s", name, match[1], prev))
			continue
		}
		versions[match[1]] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			problems = multierr.Append(problems, fmt.Errorf("%s: %w", name, err))
			continue
		}
		problems = multierr.Append(problems, checkAnnotations(name, string(body)))
	}

	if problems == nil && len(versions) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return problems
}

func checkAnnotations(name, body string) error {
	up := strings.Index(body, gooseUp)
	down := strings.Index(body, gooseDown)
	switch {
	case up < 0:
		return fmt.Errorf("%s: missing %q", name, gooseUp)
	case down < 0:
		return fmt.Errorf("%s: missing %q", name, gooseDown)
	case down < up:
		return fmt.Errorf("%s: Down section precedes Up", name)
	}
	return nil
}
