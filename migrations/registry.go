package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	notifiarr "github.com/goliatone/go-notifiarr"
	"github.com/goliatone/go-notifiarr/core"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	DefaultSourceLabel = "go-notifiarr"

	rootPath = "data/sql/migrations"
)

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc receives one filesystem per selected dialect, e.g.
// persistence.Client.RegisterSQLMigrations for the active dialect.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if next := normalizeDialects(targets); len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		copied := make([]FilesystemSpec, 0, len(filesystems))
		for _, spec := range filesystems {
			dialect := strings.TrimSpace(strings.ToLower(spec.Dialect))
			if dialect == "" || spec.FS == nil {
				continue
			}
			copied = append(copied, FilesystemSpec{Dialect: dialect, Path: spec.Path, FS: spec.FS})
		}
		if len(copied) > 0 {
			r.Filesystems = copied
		}
	}
}

// Filesystems resolves the postgres root and the sqlite subdirectory from the
// embedded tree, or from source when given.
func Filesystems(source ...fs.FS) ([]FilesystemSpec, error) {
	root := notifiarr.GetMigrationsFS()
	if len(source) > 0 && source[0] != nil {
		root = source[0]
	}

	base, basePath, err := migrationsRoot(root)
	if err != nil {
		return nil, err
	}
	sqliteFS, err := fs.Sub(base, DialectSQLite)
	if err != nil {
		return nil, migrationWrapError(err, "migrations: resolve sqlite filesystem")
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: pathJoin(basePath, DialectSQLite), FS: sqliteFS},
	}
	for _, spec := range filesystems {
		matches, globErr := fs.Glob(spec.FS, "*.up.sql")
		if globErr != nil {
			return nil, migrationWrapError(globErr, fmt.Sprintf("migrations: glob %s %s", spec.Dialect, spec.Path))
		}
		if len(matches) == 0 {
			return nil, migrationError(fmt.Sprintf("migrations: %s filesystem %q has no *.up.sql files", spec.Dialect, spec.Path))
		}
	}
	return filesystems, nil
}

func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       DefaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	switch {
	case len(reg.ValidationTargets) == 0:
		return reg, migrationError("migrations: validation targets are required")
	case strings.TrimSpace(reg.SourceLabel) == "":
		return reg, migrationError("migrations: source label is required")
	case registerFn == nil:
		return reg, migrationError("migrations: register function is required")
	}

	targets := normalizeDialects(reg.ValidationTargets)
	for _, spec := range reg.Filesystems {
		if !slices.Contains(targets, spec.Dialect) {
			continue
		}
		if err := registerFn(ctx, spec.Dialect, reg.SourceLabel, spec.FS); err != nil {
			return reg, migrationWrapError(err, fmt.Sprintf("migrations: register %s (%s)", spec.Dialect, spec.Path))
		}
	}
	return reg, nil
}

func migrationsRoot(root fs.FS) (fs.FS, string, error) {
	if matches, err := fs.Glob(root, rootPath+"/*.up.sql"); err == nil && len(matches) > 0 {
		sub, subErr := fs.Sub(root, rootPath)
		if subErr != nil {
			return nil, "", migrationWrapError(subErr, "migrations: resolve root")
		}
		return sub, rootPath, nil
	}
	if matches, err := fs.Glob(root, "*.up.sql"); err == nil && len(matches) > 0 {
		return root, ".", nil
	}
	return nil, "", migrationError("migrations: " + rootPath + " not found")
}

func normalizeDialects(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(strings.ToLower(value))
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func pathJoin(base string, suffix string) string {
	if base == "." {
		return suffix
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(suffix, "/")
}

func migrationError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ErrorInternal)
}

func migrationWrapError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ErrorInternal)
}
