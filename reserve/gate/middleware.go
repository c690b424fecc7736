package gate

import "net/http"

type middleware struct {
	http.Handler
	Gate
}

// ServeHTTP handles incoming HTTP requests and injects the current gate in
// their context.
func (m middleware) ServeHTTP(
	w http.ResponseWriter,
	r *http.Request,
) {
	ctx := r.Context()
	withGate := With(ctx, m.Gate)
	m.Handler.ServeHTTP(w, r.WithContext(withGate))
}

// Middleware returns a middleware that injects the specified gate in
// requests.
func Middleware(
	gate Gate,
) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return middleware{h, gate}
	}
}
