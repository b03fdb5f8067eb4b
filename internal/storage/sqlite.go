package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a single SQLite table keyed by
// (pk, sk). It implements Store.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (pk, sk, kind, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (pk, sk) DO UPDATE SET
			kind = excluded.kind,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.PK, rec.SK, rec.Kind, rec.Data, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put record %s/%s: %w", rec.PK, rec.SK, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, pk, sk string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT pk, sk, kind, data, updated_at FROM records
		WHERE pk = ? AND sk = ?`, pk, sk)

	var rec Record
	err := row.Scan(&rec.PK, &rec.SK, &rec.Kind, &rec.Data, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s/%s: %w", pk, sk, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, pk, sk string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE pk = ? AND sk = ?`, pk, sk)
	if err != nil {
		return fmt.Errorf("delete record %s/%s: %w", pk, sk, err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, pk string, opts QueryOptions) ([]Record, error) {
	query := `SELECT pk, sk, kind, data, updated_at FROM records WHERE pk = ?`
	args := []any{pk}
	if opts.Prefix != "" {
		query += ` AND sk LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(opts.Prefix)+"%")
	}
	if opts.Descending {
		query += ` ORDER BY sk DESC`
	} else {
		query += ` ORDER BY sk ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query partition %s: %w", pk, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (s *SQLiteStore) Scan(ctx context.Context, filter func(Record) bool) ([]Record, error) {
	// Full-table walk with the filter applied in process, matching the
	// store abstraction's scan semantics. O(table size).
	rows, err := s.db.QueryContext(ctx, `SELECT pk, sk, kind, data, updated_at FROM records`)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()

	all, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return all, nil
	}
	var out []Record
	for _, rec := range all {
		if filter(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.PK, &rec.SK, &rec.Kind, &rec.Data, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
