package model

import (
	"context"
	"math/big"
	"time"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/lib/livemode"
	"github.com/egimarket/reserve/lib/token"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Reservation represents a claim of priority over an asset. Reservations
// compete for the asset's rank 0 (current highest priority); the losing
// rank-0 holder is flipped to `superseded`.
type Reservation struct {
	Token    string
	Created  time.Time
	Livemode bool

	Asset  string // External asset id.
	Wallet string // Claimant wallet.

	Kind        RvKind
	Amount      Amount // Fiat-pegged amount, authoritative for comparison.
	TokenAmount Amount `db:"token_amount"` // Native token amount.

	Status   RvStatus
	Priority int64 // Dense rank among active reservations, 0 is highest.
}

// FiatAmount returns the fiat-pegged amount as a big.Int.
func (r *Reservation) FiatAmount() *big.Int {
	return (*big.Int)(&r.Amount)
}

// CreateReservation creates and stores a new Reservation object.
func CreateReservation(
	ctx context.Context,
	asset string,
	wallet string,
	kind RvKind,
	amount Amount,
	tokenAmount Amount,
	status RvStatus,
	priority int64,
) (*Reservation, error) {
	reservation := Reservation{
		Token:    token.New("reservation"),
		Livemode: livemode.Get(ctx),
		Created:  time.Now().UTC(),

		Asset:       asset,
		Wallet:      wallet,
		Kind:        kind,
		Amount:      amount,
		TokenAmount: tokenAmount,
		Status:      status,
		Priority:    priority,
	}

	ext := db.Ext(ctx, "reserve")
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO reservations
  (token, livemode, created, asset, wallet, kind, amount, token_amount,
   status, priority)
VALUES
  (:token, :livemode, :created, :asset, :wallet, :kind, :amount,
   :token_amount, :status, :priority)
`, reservation); err != nil {
		switch err := err.(type) {
		case *pq.Error:
			if err.Code.Name() == "unique_violation" {
				return nil, errors.Trace(ErrUniqueConstraintViolation{err})
			}
		case sqlite3.Error:
			if err.ExtendedCode == sqlite3.ErrConstraintUnique {
				return nil, errors.Trace(ErrUniqueConstraintViolation{err})
			}
		}
		return nil, errors.Trace(err)
	}

	return &reservation, nil
}

// Save updates the object database representation with the in-memory values.
func (r *Reservation) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx, "reserve")
	_, err := sqlx.NamedExec(ext, `
UPDATE reservations
SET status = :status, priority = :priority
WHERE token = :token
`, r)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadReservationByToken attempts to load a reservation for the given token.
// Tokens are unique across livemodes so no livemode filter is applied, which
// lets background tasks load reservations outside of a request context.
func LoadReservationByToken(
	ctx context.Context,
	tk string,
) (*Reservation, error) {
	reservation := Reservation{
		Token: tk,
	}

	ext := db.Ext(ctx, "reserve")
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM reservations
WHERE token = :token
`, reservation); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&reservation); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &reservation, nil
}

// LoadActiveReservationsByAsset loads the active reservations for the given
// asset ordered by priority ascending (rank 0 first).
func LoadActiveReservationsByAsset(
	ctx context.Context,
	asset string,
) ([]*Reservation, error) {
	query := Reservation{
		Livemode: livemode.Get(ctx),
		Asset:    asset,
		Status:   RvStActive,
	}

	ext := db.Ext(ctx, "reserve")
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM reservations
WHERE livemode = :livemode
  AND asset = :asset
  AND status = :status
ORDER BY priority ASC
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	reservations := []*Reservation{}
	for rows.Next() {
		reservation := Reservation{}
		if err := rows.StructScan(&reservation); err != nil {
			return nil, errors.Trace(err)
		}
		reservations = append(reservations, &reservation)
	}

	return reservations, nil
}

// LoadActiveReservationByAssetAndWallet loads the active reservation of a
// wallet on an asset if any. Used by the one-per-wallet policy.
func LoadActiveReservationByAssetAndWallet(
	ctx context.Context,
	asset string,
	wallet string,
) (*Reservation, error) {
	reservation := Reservation{
		Livemode: livemode.Get(ctx),
		Asset:    asset,
		Wallet:   wallet,
		Status:   RvStActive,
	}

	ext := db.Ext(ctx, "reserve")
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM reservations
WHERE livemode = :livemode
  AND asset = :asset
  AND wallet = :wallet
  AND status = :status
`, reservation); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&reservation); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &reservation, nil
}

// LoadReservationListByAsset loads the reservation history of an asset:
// active reservations by priority ascending first, then terminal ones by
// creation descending.
func LoadReservationListByAsset(
	ctx context.Context,
	createdBefore time.Time,
	limit uint,
	asset string,
) ([]Reservation, error) {
	query := map[string]interface{}{
		"livemode":       livemode.Get(ctx),
		"asset":          asset,
		"created_before": createdBefore.UTC(),
		"limit":          limit,
	}

	ext := db.Ext(ctx, "reserve")
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM reservations
WHERE livemode = :livemode
  AND asset = :asset
  AND created < :created_before
ORDER BY
  CASE WHEN status = 'active' THEN 0 ELSE 1 END ASC,
  priority ASC,
  created DESC
LIMIT :limit
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	reservations := []Reservation{}
	for rows.Next() {
		reservation := Reservation{}
		if err := rows.StructScan(&reservation); err != nil {
			return nil, errors.Trace(err)
		}
		reservations = append(reservations, reservation)
	}

	return reservations, nil
}

// LoadActiveReservationsCreatedBefore loads all active reservations created
// before the provided cutoff, across assets and livemodes. Used by the stale
// sweep.
func LoadActiveReservationsCreatedBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]*Reservation, error) {
	query := map[string]interface{}{
		"status": RvStActive,
		"cutoff": cutoff.UTC(),
	}

	ext := db.Ext(ctx, "reserve")
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM reservations
WHERE status = :status
  AND created < :cutoff
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	reservations := []*Reservation{}
	for rows.Next() {
		reservation := Reservation{}
		if err := rows.StructScan(&reservation); err != nil {
			return nil, errors.Trace(err)
		}
		reservations = append(reservations, &reservation)
	}

	return reservations, nil
}

// InsertReservationAndRank creates a reservation for the asset and
// recomputes the priority order of the asset's active reservations. If the
// new reservation takes rank 0 from a previous holder, that holder is
// flipped to `superseded`. The caller must hold the asset lock and run
// within a transaction; no reader observes an intermediate state.
// It returns the new reservation and the superseded one if any.
func InsertReservationAndRank(
	ctx context.Context,
	asset string,
	wallet string,
	kind RvKind,
	amount Amount,
	tokenAmount Amount,
) (*Reservation, *Reservation, error) {
	actives, err := LoadActiveReservationsByAsset(ctx, asset)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	var prevTop *Reservation
	if len(actives) > 0 {
		prevTop = actives[0]
	}

	reservation, err := CreateReservation(ctx,
		asset, wallet, kind, amount, tokenAmount,
		RvStActive, int64(len(actives)))
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	all := append(actives, reservation)
	changed := Rank(all)

	var superseded *Reservation
	if reservation.Priority == 0 && prevTop != nil {
		// The new reservation outranked the previous highest: flip it to
		// superseded and keep ranks dense over the remaining actives.
		prevTop.Status = RvStSuperseded

		remaining := []*Reservation{}
		for _, r := range all {
			if r != prevTop {
				remaining = append(remaining, r)
			}
		}
		Rank(remaining)

		superseded = prevTop
		changed = append(remaining, prevTop)
	}

	for _, r := range changed {
		if r == reservation {
			continue
		}
		if err := r.Save(ctx); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}
	if err := reservation.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	return reservation, superseded, nil
}

// TerminateReservationAndRank flips an active reservation to the provided
// terminal status and recomputes the priority order of the asset's remaining
// active reservations, promoting the next highest one to rank 0 if the
// terminated reservation held it. The caller must hold the asset lock and
// run within a transaction. It returns the promoted reservation if the
// rank-0 holder changed.
func TerminateReservationAndRank(
	ctx context.Context,
	reservation *Reservation,
	status RvStatus,
) (*Reservation, error) {
	if reservation.Status != RvStActive {
		return nil, errors.Trace(errors.Newf(
			"Cannot terminate non active reservation %s: status=%s",
			reservation.Token, reservation.Status))
	}
	if !status.IsTerminal() {
		return nil, errors.Trace(errors.Newf(
			"Cannot terminate reservation %s with non terminal status: %s",
			reservation.Token, status))
	}

	// Rank within the reservation's own livemode, whatever the caller's.
	ctx = livemode.With(ctx, reservation.Livemode)

	heldTop := reservation.Priority == 0

	reservation.Status = status
	if err := reservation.Save(ctx); err != nil {
		return nil, errors.Trace(err)
	}

	actives, err := LoadActiveReservationsByAsset(ctx, reservation.Asset)
	if err != nil {
		return nil, errors.Trace(err)
	}
	changed := Rank(actives)
	for _, r := range changed {
		if err := r.Save(ctx); err != nil {
			return nil, errors.Trace(err)
		}
	}

	if heldTop && len(actives) > 0 {
		return actives[0], nil
	}
	return nil, nil
}
