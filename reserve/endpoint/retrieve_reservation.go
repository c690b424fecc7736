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
	// EndPtRetrieveReservation retrieves a reservation.
	EndPtRetrieveReservation EndPtName = "RetrieveReservation"
)

func init() {
	registrar[EndPtRetrieveReservation] = NewRetrieveReservation
}

// RetrieveReservation retrieves a reservation by token, whatever its status.
type RetrieveReservation struct {
	Token string
}

// NewRetrieveReservation constructs and initializes the endpoint.
func NewRetrieveReservation(
	r *http.Request,
) (Endpoint, error) {
	return &RetrieveReservation{}, nil
}

// Validate validates the input parameters.
func (e *RetrieveReservation) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	// Validate token.
	token, err := ValidateToken(ctx, pat.Param(r, "reservation"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Token = *token

	return nil
}

// Execute executes the endpoint.
func (e *RetrieveReservation) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	reservation, err := model.LoadReservationByToken(ctx, e.Token)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	} else if reservation == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "reservation_not_found",
			"The reservation you are trying to retrieve does not exist: %s.",
			e.Token,
		))
	}

	ctx = livemode.With(ctx, reservation.Livemode)
	certificate, err := model.LoadCertificateByReservation(ctx,
		reservation.Token)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	}

	db.Commit(ctx, "reserve")

	certificateUUID := ""
	if certificate != nil {
		certificateUUID = certificate.UUID
	}

	return ptr.Int(http.StatusOK), &svc.Resp{
		"reservation": format.JSONPtr(reserve.NewReservationResource(ctx,
			reservation, certificateUUID)),
	}, nil
}
