package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Scope holds a single pooled connection for the duration of one logical
// operation. Repositories that share a Scope run their statements on the same
// connection, so a transaction begun on Scope.Conn covers all of them.
type Scope struct {
	Conn *pgxpool.Conn
}

// Close releases the scoped connection back to the pool.
func (s *Scope) Close() {
	if s.Conn != nil {
		s.Conn.Release()
		s.Conn = nil
	}
}

// NewScope acquires a connection from the pool. Callers must Close the
// returned scope.
func (db *DB) NewScope(ctx context.Context) (*Scope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &Scope{Conn: conn}, nil
}

type scopeContextKey struct{}

// WithScope returns a context carrying the given scope.
func WithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// GetScope extracts the scope placed on the context by WithScope.
func GetScope(ctx context.Context) (*Scope, error) {
	scope, ok := ctx.Value(scopeContextKey{}).(*Scope)
	if !ok || scope == nil || scope.Conn == nil {
		return nil, fmt.Errorf("no database scope on context")
	}
	return scope, nil
}
