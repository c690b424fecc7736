package endpoint

import (
	"context"
	"math/big"
	"net/http"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/lib/format"
	"github.com/egimarket/reserve/lib/ptr"
	"github.com/egimarket/reserve/lib/signature"
	"github.com/egimarket/reserve/lib/svc"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/async"
	"github.com/egimarket/reserve/reserve/async/task"
	"github.com/egimarket/reserve/reserve/gate"
	"github.com/egimarket/reserve/reserve/model"
	"goji.io/pat"
)

const (
	// EndPtCreateReservation creates a new reservation.
	EndPtCreateReservation EndPtName = "CreateReservation"

	// createAttempts is the number of attempts on retryable storage
	// conflicts before reporting a conflict to the caller.
	createAttempts = 3
)

func init() {
	registrar[EndPtCreateReservation] = NewCreateReservation
}

// CreateReservation creates a new reservation on an asset, ranks it against
// the asset's active reservations and issues its certificate atomically. If
// the new reservation takes the highest priority, the previous holder is
// superseded in the same transaction.
type CreateReservation struct {
	Asset       string
	Wallet      string
	Kind        model.RvKind
	Amount      big.Int
	TokenAmount big.Int
}

// NewCreateReservation constructs and initializes the endpoint.
func NewCreateReservation(
	r *http.Request,
) (Endpoint, error) {
	return &CreateReservation{}, nil
}

// Validate validates the input parameters.
func (e *CreateReservation) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	// Validate asset.
	asset, err := ValidateAsset(ctx, pat.Param(r, "asset"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Asset = *asset

	// Validate wallet.
	wallet, err := ValidateWallet(ctx, r.PostFormValue("wallet"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Wallet = *wallet

	// Validate kind.
	kind, err := ValidateKind(ctx, r.PostFormValue("kind"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Kind = *kind

	// Validate amount.
	amount, err := ValidateAmount(ctx, r.PostFormValue("amount"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Amount = *amount

	// Validate token amount.
	tokenAmount, err := ValidateAmount(ctx, r.PostFormValue("token_amount"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.TokenAmount = *tokenAmount

	return nil
}

// Execute executes the endpoint.
func (e *CreateReservation) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	reservable, err := gate.Get(ctx).IsReservable(ctx, e.Asset)
	if err != nil || !reservable {
		return nil, nil, errors.Trace(errors.NewUserErrorf(err,
			400, "asset_unavailable",
			"The asset you are trying to reserve is not available for "+
				"reservation: %s.",
			e.Asset,
		))
	}

	var lastErr error
	for i := 0; i < createAttempts; i++ {
		status, resp, err := e.attempt(ctx)
		if err != nil && model.IsRetryable(err) {
			reserve.Logf(ctx,
				"Retrying reservation creation: asset=%s wallet=%s "+
					"attempt=%d error=%q",
				e.Asset, e.Wallet, i, err.Error())
			lastErr = err
			continue
		}
		return status, resp, err
	}

	return nil, nil, errors.Trace(errors.NewUserErrorf(lastErr,
		409, "reservation_conflict",
		"The reservation could not be created because of concurrent "+
			"updates on the asset: %s. You can safely retry.",
		e.Asset,
	))
}

// attempt runs one reservation creation attempt under the asset lock and a
// single transaction.
func (e *CreateReservation) attempt(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	defer model.LockAsset(e.Asset)()

	ctx = db.Begin(ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	if reserve.GetOnePerWallet(ctx) {
		existing, err := model.LoadActiveReservationByAssetAndWallet(ctx,
			e.Asset, e.Wallet)
		if err != nil {
			return nil, nil, errors.Trace(err) // 500
		} else if existing != nil {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "duplicate_claim",
				"The wallet %s already holds an active reservation on "+
					"asset %s: %s.",
				e.Wallet, e.Asset, existing.Token,
			))
		}
	}

	reservation, superseded, err := model.InsertReservationAndRank(ctx,
		e.Asset, e.Wallet, e.Kind,
		model.Amount(e.Amount), model.Amount(e.TokenAmount))
	if err != nil {
		return nil, nil, errors.Trace(err) // 500 or retry
	}

	certificate, err := model.CreateCertificate(ctx,
		reservation, signature.Get(ctx))
	if err != nil {
		return nil, nil, errors.Trace(err) // 500 or retry
	}

	err = async.Queue(ctx,
		task.NewExpireReservation(ctx, reservation.Created, reservation.Token))
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	}

	db.Commit(ctx, "reserve")

	reserve.Logf(ctx,
		"Created reservation: reservation=%s asset=%s wallet=%s kind=%s "+
			"priority=%d certificate=%s",
		reservation.Token, reservation.Asset, reservation.Wallet,
		reservation.Kind, reservation.Priority, certificate.UUID)
	if superseded != nil {
		reserve.Logf(ctx,
			"Superseded reservation: reservation=%s asset=%s wallet=%s",
			superseded.Token, superseded.Asset, superseded.Wallet)
	}

	return ptr.Int(http.StatusCreated), &svc.Resp{
		"reservation": format.JSONPtr(reserve.NewReservationResource(ctx,
			reservation, certificate.UUID)),
		"certificate": format.JSONPtr(reserve.NewCertificateResource(ctx,
			certificate)),
	}, nil
}
