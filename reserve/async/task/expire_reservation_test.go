package task

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/livemode"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// force initialization of schemas
	_ "github.com/egimarket/reserve/reserve/model/schemas"
)

func setupTaskDB(
	t *testing.T,
) context.Context {
	ctx := context.Background()

	reserveDB, err := db.NewSqlite3DBInMemory(ctx)
	require.NoError(t, err)
	err = db.CreateDBTables(ctx, "reserve", reserveDB)
	require.NoError(t, err)
	ctx = db.WithDB(ctx, "reserve", reserveDB)
	ctx = livemode.With(ctx, false)

	return ctx
}

func TestExpireOneUnknownReservation(
	t *testing.T,
) {
	ctx := setupTaskDB(t)

	// A task whose enclosing transaction rolled back points at a token that
	// was never persisted; the task must drain instead of erroring.
	err := ExpireOne(ctx,
		"reservation_00000000000000000000000000000000")
	assert.NoError(t, err)
}

func TestSweepStaleExpiresElapsedWindows(
	t *testing.T,
) {
	ctx := setupTaskDB(t)

	setupCtx := db.Begin(ctx, "reserve")
	defer db.LoggedRollback(setupCtx, "reserve")

	alice, _, err := model.InsertReservationAndRank(setupCtx,
		"egi:sword-1", "wallet:alice", model.RvKdWeak,
		model.Amount(*big.NewInt(150)), model.Amount(*big.NewInt(1500)))
	require.NoError(t, err)
	bob, _, err := model.InsertReservationAndRank(setupCtx,
		"egi:sword-1", "wallet:bob", model.RvKdWeak,
		model.Amount(*big.NewInt(100)), model.Amount(*big.NewInt(1000)))
	require.NoError(t, err)

	db.Commit(setupCtx, "reserve")

	// Age alice's reservation past its window, as if it had elapsed while
	// the service was down.
	expiry := time.Duration(reserve.ReservationExpiryMs) * time.Millisecond
	_, err = db.Ext(ctx, "reserve").Exec(
		"UPDATE reservations SET created = ? WHERE token = ?",
		time.Now().UTC().Add(-expiry-time.Hour), alice.Token)
	require.NoError(t, err)

	err = SweepStale(ctx)
	require.NoError(t, err)

	checkCtx := db.Begin(ctx, "reserve")
	defer db.LoggedRollback(checkCtx, "reserve")

	expired, err := model.LoadReservationByToken(checkCtx, alice.Token)
	require.NoError(t, err)
	require.NotNil(t, expired)
	assert.Equal(t, model.RvStExpired, expired.Status)

	promoted, err := model.LoadReservationByToken(checkCtx, bob.Token)
	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, model.RvStActive, promoted.Status)
	assert.Equal(t, int64(0), promoted.Priority)

	db.Commit(checkCtx, "reserve")
}

func TestSweepStaleSkipsLiveWindows(
	t *testing.T,
) {
	ctx := setupTaskDB(t)

	setupCtx := db.Begin(ctx, "reserve")
	defer db.LoggedRollback(setupCtx, "reserve")

	alice, _, err := model.InsertReservationAndRank(setupCtx,
		"egi:sword-1", "wallet:alice", model.RvKdWeak,
		model.Amount(*big.NewInt(100)), model.Amount(*big.NewInt(1000)))
	require.NoError(t, err)

	db.Commit(setupCtx, "reserve")

	err = SweepStale(ctx)
	require.NoError(t, err)

	checkCtx := db.Begin(ctx, "reserve")
	defer db.LoggedRollback(checkCtx, "reserve")

	reservation, err := model.LoadReservationByToken(checkCtx, alice.Token)
	require.NoError(t, err)
	require.NotNil(t, reservation)
	assert.Equal(t, model.RvStActive, reservation.Status)

	db.Commit(checkCtx, "reserve")
}
