package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// ContextKey is the type of the keys used to carry the contextual dbs and
// transactions.
type ContextKey string

const (
	// mapKey the context.Context key under which the tagged db map is
	// stored.
	mapKey ContextKey = "db.map"
)

// WithDB returns a context with db registered under tag, preserving dbs
// already registered under other tags.
func WithDB(
	ctx context.Context,
	tag string,
	db *sqlx.DB,
) context.Context {
	m, _ := ctx.Value(mapKey).(map[string]*sqlx.DB)
	if m == nil {
		m = map[string]*sqlx.DB{}
	}
	m[tag] = db
	return context.WithValue(ctx, mapKey, m)
}

// GetDB returns the db registered in the context under tag, or nil.
func GetDB(
	ctx context.Context,
	tag string,
) *sqlx.DB {
	if db, ok := GetDBMap(ctx)[tag]; ok {
		return db
	}
	return nil
}

// GetDBMap returns the tagged db map stored in the context.
func GetDBMap(
	ctx context.Context,
) map[string]*sqlx.DB {
	return ctx.Value(mapKey).(map[string]*sqlx.DB)
}

// WithDBMap returns a context carrying the provided tagged db map. Used to
// propagate dbs onto fresh background contexts.
func WithDBMap(
	ctx context.Context,
	m map[string]*sqlx.DB,
) context.Context {
	return context.WithValue(ctx, mapKey, m)
}
