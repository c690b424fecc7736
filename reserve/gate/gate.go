// Package gate consumes the availability gate: the external service that
// knows whether an asset is still mintable and therefore reservable. The
// engine only consumes this boundary, it does not own it.
package gate

import (
	"context"
)

// Gate answers whether an asset can still be reserved.
type Gate interface {
	IsReservable(
		ctx context.Context,
		asset string,
	) (bool, error)
}

// ContextKey is the type of the key used with context to carry the
// contextual gate.
type ContextKey string

const (
	// gateKey the context.Context key to store the gate.
	gateKey ContextKey = "gate.gate"
)

// With stores the gate in the provided context.
func With(
	ctx context.Context,
	gate Gate,
) context.Context {
	return context.WithValue(ctx, gateKey, gate)
}

// Get returns the gate currently stored in the context.
func Get(
	ctx context.Context,
) Gate {
	return ctx.Value(gateKey).(Gate)
}
