package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/sitemaptree/internal/entity"
)

// SQLiteTreeStore persists sitemap runs as one JSON blob per row,
// following internal/storage/sqlite.go's CREATE TABLE IF NOT EXISTS +
// ON CONFLICT DO UPDATE idiom.
type SQLiteTreeStore struct {
	db *sql.DB
}

// NewSQLiteTreeStore opens dbPath (created if absent).
func NewSQLiteTreeStore(dbPath string) (*SQLiteTreeStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &SQLiteTreeStore{db: db}, nil
}

func (s *SQLiteTreeStore) Initialize(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sitemap_runs (
            run_id TEXT PRIMARY KEY,
            homepage TEXT NOT NULL,
            tree_json TEXT NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
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

func (s *SQLiteTreeStore) SaveTree(ctx context.Context, runID uuid.UUID, homepage string, root *entity.Sitemap) error {
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
        VALUES (?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            homepage = excluded.homepage,
            tree_json = excluded.tree_json
    `
	_, err = s.db.ExecContext(ctx, query, runID.String(), homepage, string(treeJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save tree: %w", err)
	}
	return nil
}

func (s *SQLiteTreeStore) LoadTree(ctx context.Context, runID uuid.UUID) (*entity.Sitemap, error) {
	query := `SELECT tree_json FROM sitemap_runs WHERE run_id = ?`

	var treeJSON string
	err := s.db.QueryRowContext(ctx, query, runID.String()).Scan(&treeJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load tree: %w", err)
	}

	var dict map[string]any
	if err := json.Unmarshal([]byte(treeJSON), &dict); err != nil {
		return nil, fmt.Errorf("store: unmarshal tree: %w", err)
	}
	return entity.FromDict(dict)
}

func (s *SQLiteTreeStore) ListRuns(ctx context.Context) ([]RunSummary, error) {
	query := `SELECT run_id, homepage, created_at FROM sitemap_runs ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var idStr, homepage string
		var createdAt time.Time
		if err := rows.Scan(&idStr, &homepage, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan run row: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("store: parse run id %q: %w", idStr, err)
		}
		runs = append(runs, RunSummary{RunID: id, Homepage: homepage, CreatedAt: createdAt})
	}
	return runs, rows.Err()
}

func (s *SQLiteTreeStore) Close() error {
	return s.db.Close()
}
