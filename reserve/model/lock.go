package model

import (
	"sync"
)

// assetLocks serializes mutating operations (insert, terminate) per asset.
// Operations on distinct assets proceed in parallel; there is no global
// lock. The map only grows with the set of assets seen by this process,
// which is bounded by the catalog size.
var assetLocks = struct {
	mutex sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{},
}

// LockAsset acquires the mutation lock for the provided asset and returns
// the function releasing it.
// ```
//	defer model.LockAsset(asset)()
// ```
func LockAsset(
	asset string,
) func() {
	assetLocks.mutex.Lock()
	l, ok := assetLocks.locks[asset]
	if !ok {
		l = &sync.Mutex{}
		assetLocks.locks[asset] = l
	}
	assetLocks.mutex.Unlock()

	l.Lock()
	return l.Unlock
}
