package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/voyagen/pimplecast/internal/models"
)

// SQLite implements Store on an embedded database file. Timestamps are kept
// as Unix milliseconds.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database file at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// InTx runs fn in a transaction, rolling back if fn fails.
func (s *SQLite) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(sqliteTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t sqliteTx) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM playlist_entries WHERE fetched_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("PurgeBefore: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PurgeBefore: %w", err)
	}
	return n, nil
}

func (t sqliteTx) ListSince(ctx context.Context, cutoff time.Time) ([]models.Entry, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT link, fragment, fetched_at FROM playlist_entries
		 WHERE fetched_at >= ?
		 ORDER BY fetched_at, link`,
		cutoff.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("ListSince: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e  models.Entry
			ms int64
		)
		if err := rows.Scan(&e.Link, &e.Fragment, &ms); err != nil {
			return nil, fmt.Errorf("ListSince: %w", err)
		}
		e.FetchedAt = time.UnixMilli(ms)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListSince: %w", err)
	}
	return entries, nil
}

func (t sqliteTx) GetSince(ctx context.Context, link string, cutoff time.Time) (*models.Entry, error) {
	var (
		e  models.Entry
		ms int64
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT link, fragment, fetched_at FROM playlist_entries
		 WHERE link = ? AND fetched_at >= ?`,
		link, cutoff.UnixMilli(),
	).Scan(&e.Link, &e.Fragment, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetSince: %w", err)
	}
	e.FetchedAt = time.UnixMilli(ms)
	return &e, nil
}

func (t sqliteTx) Upsert(ctx context.Context, e models.Entry) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO playlist_entries (link, fragment, fetched_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (link) DO UPDATE SET
		   fragment = excluded.fragment, fetched_at = excluded.fetched_at`,
		e.Link, e.Fragment, e.FetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
