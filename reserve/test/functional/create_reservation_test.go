package functional

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/egimarket/reserve/lib/env"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReservation(
	t *testing.T,
	r *test.Reserve,
	asset string,
	wallet string,
	kind string,
	amount string,
) (int, reserve.ReservationResource, reserve.CertificateResource) {
	status, raw := r.Post(t,
		fmt.Sprintf("/assets/%s/reservations", asset),
		url.Values{
			"wallet":       {wallet},
			"kind":         {kind},
			"amount":       {amount},
			"token_amount": {amount + "0"},
		})

	var reservation reserve.ReservationResource
	var certificate reserve.CertificateResource
	if status == 201 {
		err := raw.Extract("reservation", &reservation)
		require.NoError(t, err)
		err = raw.Extract("certificate", &certificate)
		require.NoError(t, err)
	}

	return status, reservation, certificate
}

func TestCreateReservationSimple(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	status, reservation, certificate := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")

	assert.Equal(t, 201, status)
	assert.Equal(t, "egi:sword-1", reservation.Asset)
	assert.Equal(t, "wallet:alice", reservation.Wallet)
	assert.Equal(t, "weak", reservation.Kind)
	assert.Equal(t, "active", reservation.Status)
	assert.Equal(t, int64(0), reservation.Priority)
	assert.True(t, reservation.HighestPriority)
	assert.Regexp(t, "^reservation_[a-f0-9]{32}$", reservation.ID)

	assert.Equal(t, certificate.UUID, reservation.Certificate)
	assert.Equal(t, reservation.ID, certificate.Reservation)
	assert.NotEmpty(t, certificate.Signature)
}

func TestCreateReservationHigherAmountSupersedes(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, alice, _ := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")
	status, bob, _ := createReservation(t, r,
		"egi:sword-1", "wallet:bob", "weak", "150")

	assert.Equal(t, 201, status)
	assert.Equal(t, int64(0), bob.Priority)
	assert.True(t, bob.HighestPriority)

	status, raw := r.Get(t, fmt.Sprintf("/reservations/%s", alice.ID))
	assert.Equal(t, 200, status)

	var superseded reserve.ReservationResource
	err := raw.Extract("reservation", &superseded)
	require.NoError(t, err)

	assert.Equal(t, "superseded", superseded.Status)
	assert.False(t, superseded.HighestPriority)
}

func TestCreateReservationLowerAmountRanksBelow(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, alice, _ := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "150")
	status, bob, _ := createReservation(t, r,
		"egi:sword-1", "wallet:bob", "weak", "100")

	assert.Equal(t, 201, status)
	assert.Equal(t, int64(1), bob.Priority)
	assert.False(t, bob.HighestPriority)

	status, raw := r.Get(t, fmt.Sprintf("/reservations/%s", alice.ID))
	assert.Equal(t, 200, status)

	var top reserve.ReservationResource
	err := raw.Extract("reservation", &top)
	require.NoError(t, err)

	assert.Equal(t, "active", top.Status)
	assert.True(t, top.HighestPriority)
}

func TestCreateReservationStrongOutranksWeak(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, alice, _ := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "1000000")
	status, bob, _ := createReservation(t, r,
		"egi:sword-1", "wallet:bob", "strong", "1")

	assert.Equal(t, 201, status)
	assert.Equal(t, int64(0), bob.Priority)
	assert.True(t, bob.HighestPriority)

	status, raw := r.Get(t, fmt.Sprintf("/reservations/%s", alice.ID))
	assert.Equal(t, 200, status)

	var superseded reserve.ReservationResource
	err := raw.Extract("reservation", &superseded)
	require.NoError(t, err)
	assert.Equal(t, "superseded", superseded.Status)
}

func TestCreateReservationInvalidInputs(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	status, raw := r.Post(t, "/assets/egi:sword-1/reservations",
		url.Values{
			"wallet":       {"wallet:alice"},
			"kind":         {"firm"},
			"amount":       {"100"},
			"token_amount": {"1000"},
		})
	assert.Equal(t, 400, status)
	var e errors.ConcreteUserError
	err := raw.Extract("error", &e)
	require.NoError(t, err)
	assert.Equal(t, "kind_invalid", e.ErrCode)

	status, raw = r.Post(t, "/assets/egi:sword-1/reservations",
		url.Values{
			"wallet":       {"wallet:alice"},
			"kind":         {"weak"},
			"amount":       {"0"},
			"token_amount": {"1000"},
		})
	assert.Equal(t, 400, status)
	err = raw.Extract("error", &e)
	require.NoError(t, err)
	assert.Equal(t, "amount_invalid", e.ErrCode)

	status, raw = r.Post(t, "/assets/egi:sword-1/reservations",
		url.Values{
			"wallet":       {"wallet:alice"},
			"kind":         {"weak"},
			"amount":       {"-10"},
			"token_amount": {"1000"},
		})
	assert.Equal(t, 400, status)
	err = raw.Extract("error", &e)
	require.NoError(t, err)
	assert.Equal(t, "amount_invalid", e.ErrCode)

	status, raw = r.Post(t, "/assets/egi:sword-1/reservations",
		url.Values{
			"wallet":       {"x"},
			"kind":         {"weak"},
			"amount":       {"100"},
			"token_amount": {"1000"},
		})
	assert.Equal(t, 400, status)
	err = raw.Extract("error", &e)
	require.NoError(t, err)
	assert.Equal(t, "wallet_invalid", e.ErrCode)
}

func TestCreateReservationGateDenied(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	r.Gate.SetReservable("egi:sword-1", false)

	status, raw := r.Post(t, "/assets/egi:sword-1/reservations",
		url.Values{
			"wallet":       {"wallet:alice"},
			"kind":         {"weak"},
			"amount":       {"100"},
			"token_amount": {"1000"},
		})
	assert.Equal(t, 400, status)

	var e errors.ConcreteUserError
	err := raw.Extract("error", &e)
	require.NoError(t, err)
	assert.Equal(t, "asset_unavailable", e.ErrCode)

	// Other assets are not affected.
	status, _, _ = createReservation(t, r,
		"egi:shield-1", "wallet:alice", "weak", "100")
	assert.Equal(t, 201, status)
}

func TestCreateReservationSelfCompetingAllowedByDefault(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	status, _, _ := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")
	assert.Equal(t, 201, status)
	status, second, _ := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "150")
	assert.Equal(t, 201, status)
	assert.True(t, second.HighestPriority)
}

func TestCreateReservationOnePerWalletPolicy(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	env.Get(r.Ctx).Config[reserve.EnvCfgOnePerWallet] = "true"

	status, _, _ := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")
	assert.Equal(t, 201, status)

	status, raw := r.Post(t, "/assets/egi:sword-1/reservations",
		url.Values{
			"wallet":       {"wallet:alice"},
			"kind":         {"weak"},
			"amount":       {"150"},
			"token_amount": {"1500"},
		})
	assert.Equal(t, 400, status)

	var e errors.ConcreteUserError
	err := raw.Extract("error", &e)
	require.NoError(t, err)
	assert.Equal(t, "duplicate_claim", e.ErrCode)

	// A different wallet can still bid.
	status, _, _ = createReservation(t, r,
		"egi:sword-1", "wallet:bob", "weak", "150")
	assert.Equal(t, 201, status)
}
