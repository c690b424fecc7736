package functional

import (
	"fmt"
	"testing"

	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listReservations(
	t *testing.T,
	r *test.Reserve,
	path string,
) (int, []reserve.ReservationResource) {
	status, raw := r.Get(t, path)

	var reservations []reserve.ReservationResource
	if status == 200 {
		err := raw.Extract("reservations", &reservations)
		require.NoError(t, err)
	}

	return status, reservations
}

func TestListAssetReservationsOrdering(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, alice, _ := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")
	_, bob, _ := createReservation(t, r,
		"egi:sword-1", "wallet:bob", "weak", "150")
	_, carol, _ := createReservation(t, r,
		"egi:sword-1", "wallet:carol", "weak", "120")

	status, reservations := listReservations(t, r,
		"/assets/egi:sword-1/reservations")
	assert.Equal(t, 200, status)
	require.Equal(t, 3, len(reservations))

	// Actives in priority order first, then terminal ones.
	assert.Equal(t, bob.ID, reservations[0].ID)
	assert.Equal(t, int64(0), reservations[0].Priority)
	assert.Equal(t, carol.ID, reservations[1].ID)
	assert.Equal(t, int64(1), reservations[1].Priority)
	assert.Equal(t, alice.ID, reservations[2].ID)
	assert.Equal(t, "superseded", reservations[2].Status)
}

func TestListAssetReservationsScopedByAsset(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, sword, _ := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")
	createReservation(t, r, "egi:shield-1", "wallet:bob", "weak", "150")

	status, reservations := listReservations(t, r,
		"/assets/egi:sword-1/reservations")
	assert.Equal(t, 200, status)
	require.Equal(t, 1, len(reservations))
	assert.Equal(t, sword.ID, reservations[0].ID)
}

func TestListAssetReservationsLimit(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	for i := 0; i < 5; i++ {
		status, _, _ := createReservation(t, r,
			"egi:sword-1", fmt.Sprintf("wallet:w%d", i), "weak",
			fmt.Sprintf("%d", 100+i))
		assert.Equal(t, 201, status)
	}

	status, reservations := listReservations(t, r,
		"/assets/egi:sword-1/reservations?limit=2")
	assert.Equal(t, 200, status)
	assert.Equal(t, 2, len(reservations))

	status, _ = r.Get(t, "/assets/egi:sword-1/reservations?limit=100000")
	assert.Equal(t, 400, status)
}

func TestListAssetReservationsEmpty(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	status, reservations := listReservations(t, r,
		"/assets/egi:sword-1/reservations")
	assert.Equal(t, 200, status)
	assert.Equal(t, 0, len(reservations))
}
