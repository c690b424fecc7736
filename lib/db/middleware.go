package db

import (
	"net/http"

	"github.com/jmoiron/sqlx"
)

type middleware struct {
	http.Handler
	DBMap map[string]*sqlx.DB
}

// ServeHTTP handles incoming HTTP requests and injects the current db map.
func (m middleware) ServeHTTP(
	w http.ResponseWriter,
	r *http.Request,
) {
	ctx := r.Context()
	withDB := WithDBMap(ctx, m.DBMap)
	m.Handler.ServeHTTP(w, r.WithContext(withDB))
}

// Middleware returns a middleware that injects the specified DB map in
// requests.
func Middleware(
	dbMap map[string]*sqlx.DB,
) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return middleware{h, dbMap}
	}
}
