package signature

import "net/http"

type middleware struct {
	http.Handler
	*Signer
}

// ServeHTTP handles incoming HTTP requests and injects the current signer in
// their context.
func (m middleware) ServeHTTP(
	w http.ResponseWriter,
	r *http.Request,
) {
	ctx := r.Context()
	withSigner := With(ctx, m.Signer)
	m.Handler.ServeHTTP(w, r.WithContext(withSigner))
}

// Middleware returns a middleware that injects the specified signer in
// requests.
func Middleware(
	signer *Signer,
) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return middleware{h, signer}
	}
}
