package task

import (
	"context"
	"time"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/model"
	"golang.org/x/sync/errgroup"
)

// sweepConcurrency bounds parallel expiries during a sweep. Expiries on
// distinct assets don't contend; the limit only protects the database.
const sweepConcurrency = 4

// SweepStale expires all active reservations whose window elapsed. It runs at
// startup to catch reservations whose expiry task was lost or executed while
// the service was down.
func SweepStale(
	ctx context.Context,
) error {
	expiry := time.Duration(reserve.ReservationExpiryMs) * time.Millisecond
	cutoff := time.Now().Add(-expiry)

	loadCtx := db.Begin(ctx, "reserve")
	defer db.LoggedRollback(loadCtx, "reserve")

	stale, err := model.LoadActiveReservationsCreatedBefore(loadCtx, cutoff)
	if err != nil {
		return errors.Trace(err)
	}

	db.Commit(loadCtx, "reserve")

	if len(stale) == 0 {
		return nil
	}
	reserve.Logf(ctx, "Sweeping stale reservations: count=%d", len(stale))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, r := range stale {
		token := r.Token
		g.Go(func() error {
			return errors.Trace(ExpireOne(gCtx, token))
		})
	}

	return errors.Trace(g.Wait())
}
