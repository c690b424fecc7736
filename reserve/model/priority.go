package model

import (
	"math/big"
	"sort"
)

// Compare orders two reservations competing for the same asset. It returns
// -1 if a outranks b, 1 if b outranks a and never 0 for distinct
// reservations. The order is total:
// - a strong reservation outranks a weak one, independently of amounts,
// - within the same kind, the higher fiat amount outranks the lower,
// - exact ties are broken by earlier creation, then by token ascending.
// Compare is a pure function with no side effect so that it can be used both
// for insertion ranking and for recomputation after a termination.
func Compare(
	a *Reservation,
	b *Reservation,
) int {
	if a.Kind != b.Kind {
		if a.Kind == RvKdStrong {
			return -1
		}
		return 1
	}

	if c := (*big.Int)(&a.Amount).Cmp((*big.Int)(&b.Amount)); c != 0 {
		return -c
	}

	if !a.Created.Equal(b.Created) {
		if a.Created.Before(b.Created) {
			return -1
		}
		return 1
	}

	switch {
	case a.Token < b.Token:
		return -1
	case a.Token > b.Token:
		return 1
	default:
		return 0
	}
}

// Rank sorts the provided non-terminal reservations by priority and assigns
// dense Priority values (0 is the current highest). It returns the
// reservations whose Priority changed.
func Rank(
	reservations []*Reservation,
) []*Reservation {
	sort.Slice(reservations, func(i, j int) bool {
		return Compare(reservations[i], reservations[j]) < 0
	})

	changed := []*Reservation{}
	for i, r := range reservations {
		if r.Priority != int64(i) {
			r.Priority = int64(i)
			changed = append(changed, r)
		}
	}
	return changed
}
