package model

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testReservation(
	token string,
	kind RvKind,
	amount int64,
	created time.Time,
) *Reservation {
	return &Reservation{
		Token:    token,
		Created:  created,
		Kind:     kind,
		Amount:   Amount(*big.NewInt(amount)),
		Status:   RvStActive,
		Priority: -1,
	}
}

func TestCompareStrongOutranksWeak(
	t *testing.T,
) {
	now := time.Now()
	strong := testReservation("reservation_a", RvKdStrong, 1, now)
	weak := testReservation("reservation_b", RvKdWeak, 1000000, now)

	assert.Equal(t, -1, Compare(strong, weak))
	assert.Equal(t, 1, Compare(weak, strong))
}

func TestCompareHigherAmountOutranks(
	t *testing.T,
) {
	now := time.Now()
	high := testReservation("reservation_a", RvKdWeak, 150, now)
	low := testReservation("reservation_b", RvKdWeak, 100, now)

	assert.Equal(t, -1, Compare(high, low))
	assert.Equal(t, 1, Compare(low, high))
}

func TestCompareEarlierCreationBreaksTies(
	t *testing.T,
) {
	now := time.Now()
	early := testReservation("reservation_b", RvKdWeak, 100, now)
	late := testReservation("reservation_a", RvKdWeak, 100,
		now.Add(time.Millisecond))

	assert.Equal(t, -1, Compare(early, late))
	assert.Equal(t, 1, Compare(late, early))
}

func TestCompareTokenBreaksExactTies(
	t *testing.T,
) {
	now := time.Now()
	a := testReservation("reservation_a", RvKdWeak, 100, now)
	b := testReservation("reservation_b", RvKdWeak, 100, now)

	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, a))
}

func TestCompareIsTotal(
	t *testing.T,
) {
	now := time.Now()
	reservations := []*Reservation{
		testReservation("reservation_a", RvKdStrong, 50, now),
		testReservation("reservation_b", RvKdStrong, 50, now),
		testReservation("reservation_c", RvKdWeak, 150, now),
		testReservation("reservation_d", RvKdWeak, 150,
			now.Add(time.Millisecond)),
		testReservation("reservation_e", RvKdWeak, 100, now),
	}

	// Antisymmetry over every pair.
	for _, a := range reservations {
		for _, b := range reservations {
			if a == b {
				assert.Equal(t, 0, Compare(a, b))
			} else {
				assert.Equal(t, Compare(a, b), -Compare(b, a))
			}
		}
	}
}

func TestRankAssignsDensePriorities(
	t *testing.T,
) {
	now := time.Now()
	weak := testReservation("reservation_a", RvKdWeak, 100, now)
	strong := testReservation("reservation_b", RvKdStrong, 1, now)
	high := testReservation("reservation_c", RvKdWeak, 150, now)

	changed := Rank([]*Reservation{weak, strong, high})

	assert.Equal(t, int64(0), strong.Priority)
	assert.Equal(t, int64(1), high.Priority)
	assert.Equal(t, int64(2), weak.Priority)
	assert.Equal(t, 3, len(changed))
}

func TestRankReturnsOnlyChanged(
	t *testing.T,
) {
	now := time.Now()
	top := testReservation("reservation_a", RvKdWeak, 150, now)
	top.Priority = 0
	next := testReservation("reservation_b", RvKdWeak, 100, now)
	next.Priority = 1

	changed := Rank([]*Reservation{top, next})
	assert.Equal(t, 0, len(changed))

	// Terminating the top and re-ranking only moves the remaining one.
	changed = Rank([]*Reservation{next})
	assert.Equal(t, 1, len(changed))
	assert.Equal(t, int64(0), next.Priority)
}
