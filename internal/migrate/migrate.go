package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createTrackingTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// Run applies every migration in fsys that is not yet recorded in
// schema_migrations. Files are named NNN_description.sql and may carry goose
// markers; each file runs in its own transaction.
func Run(ctx context.Context, db *pgxpool.Pool, fsys fs.FS, logger *slog.Logger) error {
	if _, err := db.Exec(ctx, createTrackingTable); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	files, err := migrationFiles(fsys)
	if err != nil {
		return err
	}

	var count int
	for _, name := range pending(files, applied) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		upSQL := extractUp(string(data))
		if upSQL == "" {
			upSQL = string(data)
		}

		logger.Info("applying migration", "file", name)
		if err := apply(ctx, db, name, upSQL); err != nil {
			return err
		}
		count++
	}

	logger.Info("migrations complete", "applied", count, "total", len(files))
	return nil
}

func appliedVersions(ctx context.Context, db *pgxpool.Pool) (map[string]bool, error) {
	rows, err := db.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func apply(ctx context.Context, db *pgxpool.Pool, name, upSQL string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction for %s: %w", name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, upSQL); err != nil {
		return fmt.Errorf("executing migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", name); err != nil {
		return fmt.Errorf("recording migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing migration %s: %w", name, err)
	}
	return nil
}

// migrationFiles returns the sorted .sql file names at the root of fsys.
func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func pending(files []string, applied map[string]bool) []string {
	var out []string
	for _, name := range files {
		if !applied[name] {
			out = append(out, name)
		}
	}
	return out
}

// extractUp returns the SQL between "-- +goose Up" and "-- +goose Down",
// without StatementBegin/End markers.
func extractUp(content string) string {
	var upLines []string
	inUp := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "-- +goose Up":
			inUp = true
			continue
		case trimmed == "-- +goose Down":
			return strings.TrimSpace(strings.Join(upLines, "\n"))
		case !inUp:
			continue
		case trimmed == "-- +goose StatementBegin", trimmed == "-- +goose StatementEnd":
			continue
		}
		upLines = append(upLines, line)
	}

	return strings.TrimSpace(strings.Join(upLines, "\n"))
}
