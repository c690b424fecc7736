package endpoint

import (
	"context"
	"net/http"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/lib/format"
	"github.com/egimarket/reserve/lib/ptr"
	"github.com/egimarket/reserve/lib/signature"
	"github.com/egimarket/reserve/lib/svc"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/gate"
	"github.com/egimarket/reserve/reserve/model"
	"goji.io/pat"
)

const (
	// EndPtVerifyCertificate verifies a certificate.
	EndPtVerifyCertificate EndPtName = "VerifyCertificate"
)

func init() {
	registrar[EndPtVerifyCertificate] = NewVerifyCertificate
}

// VerifyCertificate checks a certificate's signature against its stored
// canonical fields and reports the current standing of its reservation. It
// never mutates state: an invalid signature is reported, not acted upon.
type VerifyCertificate struct {
	UUID string
}

// NewVerifyCertificate constructs and initializes the endpoint.
func NewVerifyCertificate(
	r *http.Request,
) (Endpoint, error) {
	return &VerifyCertificate{}, nil
}

// Validate validates the input parameters.
func (e *VerifyCertificate) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	// Validate uuid.
	id, err := ValidateUUID(ctx, pat.Param(r, "certificate"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.UUID = *id

	return nil
}

// Execute executes the endpoint.
func (e *VerifyCertificate) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	certificate, err := model.LoadCertificateByUUID(ctx, e.UUID)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	} else if certificate == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "certificate_not_found",
			"The certificate you are trying to verify does not exist: %s.",
			e.UUID,
		))
	}

	reservation, err := model.LoadReservationByToken(ctx,
		certificate.Reservation)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	}

	db.Commit(ctx, "reserve")

	valid := certificate.CheckSignature(signature.Get(ctx))
	if !valid {
		reserve.Logf(ctx,
			"Invalid certificate signature: certificate=%s reservation=%s",
			certificate.UUID, certificate.Reservation)
	}

	isHighestPriority := reservation != nil &&
		reservation.Status == model.RvStActive &&
		reservation.Priority == 0

	assetStillAvailable, err := gate.Get(ctx).IsReservable(ctx,
		certificate.Asset)
	if err != nil {
		reserve.Logf(ctx,
			"Gate error during verification: certificate=%s asset=%s "+
				"error=%q",
			certificate.UUID, certificate.Asset, err.Error())
		assetStillAvailable = false
	}

	return ptr.Int(http.StatusOK), &svc.Resp{
		"verification": format.JSONPtr(reserve.VerificationResource{
			Certificate: certificate.UUID,

			Valid:               valid,
			IsHighestPriority:   isHighestPriority,
			AssetStillAvailable: assetStillAvailable,
		}),
	}, nil
}
