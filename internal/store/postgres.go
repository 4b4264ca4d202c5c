package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/romangod6/sitemaptree/internal/entity"
)

// PostgresTreeStore is the Postgres-backed TreeStore, storing the
// dictionary form as a JSONB column, following internal/storage/postgres.go's
// $-placeholder + EXCLUDED upsert idiom.
type PostgresTreeStore struct {
	db *sql.DB
}

func NewPostgresTreeStore(connStr string) (*PostgresTreeStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresTreeStore{db: db}, nil
}

func (s *PostgresTreeStore) Initialize(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sitemap_runs (
            run_id UUID PRIMARY KEY,
            homepage VARCHAR(2048) NOT NULL,
            tree_json JSONB NOT NULL,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sitemap_runs_homepage ON sitemap_runs(homepage)`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("store: executing query %s: %w", query, err)
		}
	}
	return nil
}

func (s *PostgresTreeStore) SaveTree(ctx context.Context, runID uuid.UUID, homepage string, root *entity.Sitemap) error {
	dict, err := root.ToDict()
	if err != nil {
		return fmt.Errorf("store: serialise tree: %w", err)
	}
	treeJSON, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("store: marshal tree: %w", err)
	}

	query := `
        INSERT INTO sitemap_runs (run_id, homepage, tree_json, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (run_id) DO UPDATE SET
            homepage = EXCLUDED.homepage,
            tree_json = EXCLUDED.tree_json
    `
	_, err = s.db.ExecContext(ctx, query, runID, homepage, treeJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save tree: %w", err)
	}
	return nil
}

func (s *PostgresTreeStore) LoadTree(ctx context.Context, runID uuid.UUID) (*entity.Sitemap, error) {
	query := `SELECT tree_json FROM sitemap_runs WHERE run_id = $1`

	var treeJSON []byte
	err := s.db.QueryRowContext(ctx, query, runID).Scan(&treeJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load tree: %w", err)
	}

	var dict map[string]any
	if err := json.Unmarshal(treeJSON, &dict); err != nil {
		return nil, fmt.Errorf("store: unmarshal tree: %w", err)
	}
	return entity.FromDict(dict)
}

func (s *PostgresTreeStore) ListRuns(ctx context.Context) ([]RunSummary, error) {
	query := `SELECT run_id, homepage, created_at FROM sitemap_runs ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.RunID, &run.Homepage, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresTreeStore) Close() error {
	return s.db.Close()
}
