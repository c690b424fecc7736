package task

import (
	"context"
	"time"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/async"
	"github.com/egimarket/reserve/reserve/model"
)

const (
	// TkExpireReservation expires a reservation once its window elapses.
	TkExpireReservation model.TkName = "expire_reservation"
)

func init() {
	async.Registrar[TkExpireReservation] = NewExpireReservation
}

// ExpireReservation expires the reservation it is associated with, promoting
// the next highest priority reservation if needed.
type ExpireReservation struct {
	created time.Time
	token   string
}

// NewExpireReservation constructs and initializes the task.
func NewExpireReservation(
	ctx context.Context,
	created time.Time,
	subject string,
) async.Task {
	return &ExpireReservation{
		created: created,
		token:   subject,
	}
}

// Name returns the task name.
func (t *ExpireReservation) Name() model.TkName {
	return TkExpireReservation
}

// Created returns the task creation time.
func (t *ExpireReservation) Created() time.Time {
	return t.created
}

// Subject returns the task subject.
func (t *ExpireReservation) Subject() string {
	return t.token
}

// MaxRetries returns the task maximum number of retries.
func (t *ExpireReservation) MaxRetries() uint {
	return 18
}

// DeadlineForRetry returns the deadline for the provided retry count. The
// first execution happens when the reservation window elapses; retries back
// off linearly from there.
func (t *ExpireReservation) DeadlineForRetry(
	retry uint,
) time.Time {
	expiry := time.Duration(reserve.ReservationExpiryMs) * time.Millisecond
	return t.created.Add(expiry + time.Duration(retry)*time.Minute)
}

// Execute idempotently runs the task to completion or errors.
func (t *ExpireReservation) Execute(
	ctx context.Context,
) error {
	return errors.Trace(ExpireOne(ctx, t.token))
}

// ExpireOne expires the reservation with the provided token if it is still
// active, under the asset lock and a transaction. It is a no-op on terminal
// and unknown reservations: expiry races with cancellation harmlessly, and a
// task queued in a transaction that never committed drains without retrying.
func ExpireOne(
	ctx context.Context,
	token string,
) error {
	reservation, err := model.LoadReservationByToken(ctx, token)
	if err != nil {
		return errors.Trace(err)
	} else if reservation == nil {
		reserve.Logf(ctx,
			"Skipping expiry of unknown reservation: reservation=%s", token)
		return nil
	}

	defer model.LockAsset(reservation.Asset)()

	ctx = db.Begin(ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	// Reload under the lock as the status may have flipped since.
	reservation, err = model.LoadReservationByToken(ctx, token)
	if err != nil {
		return errors.Trace(err)
	} else if reservation == nil {
		db.Commit(ctx, "reserve")
		reserve.Logf(ctx,
			"Skipping expiry of unknown reservation: reservation=%s", token)
		return nil
	}

	if reservation.Status != model.RvStActive {
		db.Commit(ctx, "reserve")
		reserve.Logf(ctx,
			"Skipping expiry of terminal reservation: reservation=%s status=%s",
			reservation.Token, reservation.Status)
		return nil
	}

	promoted, err := model.TerminateReservationAndRank(
		ctx, reservation, model.RvStExpired)
	if err != nil {
		return errors.Trace(err)
	}

	db.Commit(ctx, "reserve")

	reserve.Logf(ctx,
		"Expired reservation: reservation=%s asset=%s wallet=%s",
		reservation.Token, reservation.Asset, reservation.Wallet)
	if promoted != nil {
		reserve.Logf(ctx,
			"Promoted reservation: reservation=%s asset=%s wallet=%s",
			promoted.Token, promoted.Asset, promoted.Wallet)
	}

	return nil
}
