package gate

import (
	"context"
	"sync"
)

// Static is an in-memory gate used in tests and local development. Assets
// default to reservable unless marked otherwise.
type Static struct {
	mutex  sync.Mutex
	closed map[string]bool
}

// NewStatic constructs a static gate with every asset reservable.
func NewStatic() *Static {
	return &Static{
		closed: map[string]bool{},
	}
}

// SetReservable marks the asset as reservable or not.
func (s *Static) SetReservable(
	asset string,
	reservable bool,
) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed[asset] = !reservable
}

// IsReservable implements Gate.
func (s *Static) IsReservable(
	ctx context.Context,
	asset string,
) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return !s.closed[asset], nil
}
