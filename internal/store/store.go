// Package store holds the adapters over the document database. Postgres is
// the single source of truth; Redis only carries disposable state snapshots.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a referenced document id does not resolve.
var ErrNotFound = errors.New("document not found")

// Store wraps the pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New opens a connection pool against the given database URL.
func New(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool returns the underlying pgxpool.Pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func notFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
