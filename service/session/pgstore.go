package session

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PgStore reads the sessions table maintained by connect-pg-simple.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Lookup(ctx context.Context, sid string) (Principal, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT sess::text FROM sessions WHERE sid=$1 AND expire > now()`, sid,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return Principal{}, ErrNoSession
	}
	if err != nil {
		return Principal{}, errors.Wrap(err, "query session")
	}
	return parse(doc)
}
