package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voyagen/pimplecast/internal/models"
)

var (
	// ErrNotFound is returned when no live cache row exists for a link.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedDSN is returned for database URLs with an unknown scheme.
	ErrUnsupportedDSN = errors.New("unsupported database url (want postgres:// or sqlite://)")
)

// Tx is the set of cache-table operations available inside one transaction.
type Tx interface {
	// PurgeBefore deletes rows fetched before cutoff and returns how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// ListSince returns rows fetched at or after cutoff, oldest first.
	ListSince(ctx context.Context, cutoff time.Time) ([]models.Entry, error)
	// GetSince returns the row for link if it was fetched at or after cutoff, else ErrNotFound.
	GetSince(ctx context.Context, link string, cutoff time.Time) (*models.Entry, error)
	// Upsert inserts e or replaces the existing row for e.Link.
	Upsert(ctx context.Context, e models.Entry) error
}

// Store persists resolved playlist entries keyed by broadcast link.
type Store interface {
	// InTx runs fn in a single transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Backend names the storage engine behind a database URL.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// BackendFor inspects the scheme of dsn.
func BackendFor(dsn string) (Backend, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return BackendSQLite, nil
	default:
		return "", ErrUnsupportedDSN
	}
}

// Open connects to the store named by dsn. Run RunMigrations first.
func Open(ctx context.Context, dsn string) (Store, error) {
	backend, err := BackendFor(dsn)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendPostgres:
		return NewPostgres(ctx, dsn)
	case BackendSQLite:
		return NewSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"))
	}
	return nil, fmt.Errorf("open %s: %w", backend, ErrUnsupportedDSN)
}
