package model

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPayloadFormat(
	t *testing.T,
) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	certificate := Certificate{
		UUID:               "5f3a0a1e-8f1f-4c2a-9d5e-000000000001",
		Asset:              "egi:sword-1",
		Wallet:             "wallet:alice",
		Kind:               RvKdWeak,
		Amount:             Amount(*big.NewInt(100)),
		TokenAmount:        Amount(*big.NewInt(1000)),
		ReservationCreated: created,
	}

	expected := fmt.Sprintf(
		"5f3a0a1e-8f1f-4c2a-9d5e-000000000001|egi:sword-1|wallet:alice|"+
			"weak|100|1000|%d", created.UnixNano())
	assert.Equal(t, expected, string(certificate.CanonicalPayload()))
}

func TestCertificateSignatureRoundTrip(
	t *testing.T,
) {
	signer, err := signature.NewSigner("test_secret")
	require.NoError(t, err)

	certificate := Certificate{
		UUID:               "5f3a0a1e-8f1f-4c2a-9d5e-000000000001",
		Asset:              "egi:sword-1",
		Wallet:             "wallet:alice",
		Kind:               RvKdStrong,
		Amount:             Amount(*big.NewInt(100)),
		TokenAmount:        Amount(*big.NewInt(1000)),
		ReservationCreated: time.Now().UTC(),
	}
	certificate.Signature = signer.Sign(certificate.CanonicalPayload())

	assert.True(t, certificate.CheckSignature(signer))

	// Any canonical field change invalidates the signature.
	tampered := certificate
	tampered.Wallet = "wallet:mallory"
	assert.False(t, tampered.CheckSignature(signer))

	tampered = certificate
	tampered.Amount = Amount(*big.NewInt(101))
	assert.False(t, tampered.CheckSignature(signer))

	// A different signing secret does not verify.
	other, err := signature.NewSigner("other_secret")
	require.NoError(t, err)
	assert.False(t, certificate.CheckSignature(other))
}

func TestCreateCertificateStoresSignedTuple(
	t *testing.T,
) {
	ctx := setupModelDB(t)

	signer, err := signature.NewSigner("test_secret")
	require.NoError(t, err)

	ctx = db.Begin(ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	reservation, _ := insertTestReservation(t, ctx,
		"egi:sword-1", "wallet:alice", RvKdWeak, 100)

	certificate, err := CreateCertificate(ctx, reservation, signer)
	require.NoError(t, err)

	loaded, err := LoadCertificateByUUID(ctx, certificate.UUID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, reservation.Token, loaded.Reservation)
	assert.Equal(t, reservation.Asset, loaded.Asset)
	assert.Equal(t, reservation.Wallet, loaded.Wallet)
	assert.Equal(t, reservation.Kind, loaded.Kind)
	assert.True(t, loaded.CheckSignature(signer))

	byReservation, err := LoadCertificateByReservation(ctx,
		reservation.Token)
	require.NoError(t, err)
	require.NotNil(t, byReservation)
	assert.Equal(t, certificate.UUID, byReservation.UUID)

	db.Commit(ctx, "reserve")
}
