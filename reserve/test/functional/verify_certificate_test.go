package functional

import (
	"fmt"
	"testing"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifyCertificate(
	t *testing.T,
	r *test.Reserve,
	id string,
) (int, reserve.VerificationResource) {
	status, raw := r.Get(t, fmt.Sprintf("/certificates/%s/verify", id))

	var verification reserve.VerificationResource
	if status == 200 {
		err := raw.Extract("verification", &verification)
		require.NoError(t, err)
	}

	return status, verification
}

func TestVerifyCertificateSimple(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, _, certificate := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")

	status, verification := verifyCertificate(t, r, certificate.UUID)

	assert.Equal(t, 200, status)
	assert.Equal(t, certificate.UUID, verification.Certificate)
	assert.True(t, verification.Valid)
	assert.True(t, verification.IsHighestPriority)
	assert.True(t, verification.AssetStillAvailable)
}

func TestVerifySupersededCertificateStillValid(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, _, aliceCert := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")
	_, _, bobCert := createReservation(t, r,
		"egi:sword-1", "wallet:bob", "weak", "150")

	status, verification := verifyCertificate(t, r, aliceCert.UUID)
	assert.Equal(t, 200, status)
	assert.True(t, verification.Valid)
	assert.False(t, verification.IsHighestPriority)

	status, verification = verifyCertificate(t, r, bobCert.UUID)
	assert.Equal(t, 200, status)
	assert.True(t, verification.Valid)
	assert.True(t, verification.IsHighestPriority)
}

func TestVerifyCertificateGateClosed(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, _, certificate := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")

	r.Gate.SetReservable("egi:sword-1", false)

	status, verification := verifyCertificate(t, r, certificate.UUID)
	assert.Equal(t, 200, status)
	assert.True(t, verification.Valid)
	assert.True(t, verification.IsHighestPriority)
	assert.False(t, verification.AssetStillAvailable)
}

func TestVerifyTamperedCertificate(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, _, certificate := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")

	// Tamper with a stored canonical field behind the service's back.
	ext := db.Ext(r.Ctx, "reserve")
	_, err := ext.Exec(
		"UPDATE certificates SET wallet = ? WHERE uuid = ?",
		"wallet:mallory", certificate.UUID)
	require.NoError(t, err)

	status, verification := verifyCertificate(t, r, certificate.UUID)
	assert.Equal(t, 200, status)
	assert.False(t, verification.Valid)

	// Verification never mutates: the reservation is left untouched.
	status, raw := r.Get(t,
		fmt.Sprintf("/reservations/%s", certificate.Reservation))
	assert.Equal(t, 200, status)
	var reservation reserve.ReservationResource
	err = raw.Extract("reservation", &reservation)
	require.NoError(t, err)
	assert.Equal(t, "active", reservation.Status)
}

func TestVerifyCertificateNotFound(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	status, raw := r.Get(t,
		fmt.Sprintf("/certificates/%s/verify", uuid.New().String()))
	assert.Equal(t, 404, status)

	var e errors.ConcreteUserError
	err := raw.Extract("error", &e)
	require.NoError(t, err)
	assert.Equal(t, "certificate_not_found", e.ErrCode)
}

func TestRetrieveCertificate(
	t *testing.T,
) {
	t.Parallel()
	r := test.CreateReserve(t)
	defer r.Close()

	_, reservation, certificate := createReservation(t, r,
		"egi:sword-1", "wallet:alice", "weak", "100")

	status, raw := r.Get(t,
		fmt.Sprintf("/certificates/%s", certificate.UUID))
	assert.Equal(t, 200, status)

	var retrieved reserve.CertificateResource
	err := raw.Extract("certificate", &retrieved)
	require.NoError(t, err)

	assert.Equal(t, certificate.UUID, retrieved.UUID)
	assert.Equal(t, reservation.ID, retrieved.Reservation)
	assert.Equal(t, certificate.Signature, retrieved.Signature)

	// Certificates survive their reservation's termination.
	status, _ = r.Delete(t,
		fmt.Sprintf("/reservations/%s?wallet=wallet:alice", reservation.ID))
	assert.Equal(t, 200, status)

	status, _ = r.Get(t,
		fmt.Sprintf("/certificates/%s", certificate.UUID))
	assert.Equal(t, 200, status)
}
