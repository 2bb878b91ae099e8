package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyagen/pimplecast/internal/models"
)

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store from a DSN. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InTx runs fn in a repeatable-read transaction so one playlist build sees a
// single snapshot of the cache table.
func (p *Postgres) InTx(ctx context.Context, fn func(Tx) error) error {
	return pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM playlist_entries WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("PurgeBefore: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t pgTx) ListSince(ctx context.Context, cutoff time.Time) ([]models.Entry, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT link, fragment, fetched_at FROM playlist_entries
		 WHERE fetched_at >= $1
		 ORDER BY fetched_at, link`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("ListSince: %w", err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Entry])
	if err != nil {
		return nil, fmt.Errorf("ListSince: %w", err)
	}
	return entries, nil
}

func (t pgTx) GetSince(ctx context.Context, link string, cutoff time.Time) (*models.Entry, error) {
	var e models.Entry
	err := t.tx.QueryRow(ctx,
		`SELECT link, fragment, fetched_at FROM playlist_entries
		 WHERE link = $1 AND fetched_at >= $2`,
		link, cutoff,
	).Scan(&e.Link, &e.Fragment, &e.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetSince: %w", err)
	}
	return &e, nil
}

func (t pgTx) Upsert(ctx context.Context, e models.Entry) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO playlist_entries (link, fragment, fetched_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (link) DO UPDATE SET
		   fragment = EXCLUDED.fragment, fetched_at = EXCLUDED.fetched_at`,
		e.Link, e.Fragment, e.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
