package endpoint

import (
	"context"
	"net/http"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/lib/format"
	"github.com/egimarket/reserve/lib/livemode"
	"github.com/egimarket/reserve/lib/ptr"
	"github.com/egimarket/reserve/lib/svc"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/model"
	"goji.io/pat"
)

const (
	// EndPtCancelReservation cancels an active reservation.
	EndPtCancelReservation EndPtName = "CancelReservation"
)

func init() {
	registrar[EndPtCancelReservation] = NewCancelReservation
}

// CancelReservation cancels an active reservation on behalf of its wallet,
// promoting the next highest priority reservation if the cancelled one held
// the highest priority.
type CancelReservation struct {
	Token  string
	Wallet string
}

// NewCancelReservation constructs and initializes the endpoint.
func NewCancelReservation(
	r *http.Request,
) (Endpoint, error) {
	return &CancelReservation{}, nil
}

// Validate validates the input parameters.
func (e *CancelReservation) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	// Validate token.
	token, err := ValidateToken(ctx, pat.Param(r, "reservation"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Token = *token

	// Validate wallet.
	wallet, err := ValidateWallet(ctx, r.URL.Query().Get("wallet"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Wallet = *wallet

	return nil
}

// Execute executes the endpoint.
func (e *CancelReservation) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	reservation, err := model.LoadReservationByToken(ctx, e.Token)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	} else if reservation == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "reservation_not_found",
			"The reservation you are trying to cancel does not exist: %s.",
			e.Token,
		))
	}

	defer model.LockAsset(reservation.Asset)()

	ctx = db.Begin(ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	// Reload under the lock as the status may have flipped since.
	reservation, err = model.LoadReservationByToken(ctx, e.Token)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	} else if reservation == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "reservation_not_found",
			"The reservation you are trying to cancel does not exist: %s.",
			e.Token,
		))
	}

	if reservation.Wallet != e.Wallet {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "not_authorized",
			"The reservation %s is not held by wallet %s.",
			reservation.Token, e.Wallet,
		))
	}

	if reservation.Status.IsTerminal() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "already_terminal",
			"The reservation you are trying to cancel is not active: "+
				"%s (status: %s).",
			reservation.Token, reservation.Status,
		))
	}

	promoted, err := model.TerminateReservationAndRank(ctx,
		reservation, model.RvStCancelled)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	}

	ctx = livemode.With(ctx, reservation.Livemode)
	certificate, err := model.LoadCertificateByReservation(ctx,
		reservation.Token)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	}

	db.Commit(ctx, "reserve")

	reserve.Logf(ctx,
		"Cancelled reservation: reservation=%s asset=%s wallet=%s",
		reservation.Token, reservation.Asset, reservation.Wallet)
	if promoted != nil {
		reserve.Logf(ctx,
			"Promoted reservation: reservation=%s asset=%s wallet=%s",
			promoted.Token, promoted.Asset, promoted.Wallet)
	}

	certificateUUID := ""
	if certificate != nil {
		certificateUUID = certificate.UUID
	}

	return ptr.Int(http.StatusOK), &svc.Resp{
		"reservation": format.JSONPtr(reserve.NewReservationResource(ctx,
			reservation, certificateUUID)),
	}, nil
}
