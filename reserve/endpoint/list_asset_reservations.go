package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/lib/format"
	"github.com/egimarket/reserve/lib/ptr"
	"github.com/egimarket/reserve/lib/svc"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/model"
	"goji.io/pat"
)

const (
	// EndPtListAssetReservations lists the reservations of an asset.
	EndPtListAssetReservations EndPtName = "ListAssetReservations"
)

func init() {
	registrar[EndPtListAssetReservations] = NewListAssetReservations
}

// ListAssetReservations returns the reservations of an asset: active ones in
// priority order first, then terminal ones by creation time descending.
type ListAssetReservations struct {
	Asset         string
	CreatedBefore time.Time
	Limit         uint
}

// NewListAssetReservations constructs and initializes the endpoint.
func NewListAssetReservations(
	r *http.Request,
) (Endpoint, error) {
	return &ListAssetReservations{}, nil
}

// Validate validates the input parameters.
func (e *ListAssetReservations) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	// Validate asset.
	asset, err := ValidateAsset(ctx, pat.Param(r, "asset"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Asset = *asset

	// Validate paging.
	createdBefore, err := ValidateCreatedBefore(ctx,
		r.URL.Query().Get("created_before"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.CreatedBefore = *createdBefore

	limit, err := ValidateLimit(ctx, r.URL.Query().Get("limit"))
	if err != nil {
		return errors.Trace(err) // 400
	}
	e.Limit = *limit

	return nil
}

// Execute executes the endpoint.
func (e *ListAssetReservations) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx, "reserve")
	defer db.LoggedRollback(ctx, "reserve")

	reservations, err := model.LoadReservationListByAsset(ctx,
		e.CreatedBefore, e.Limit, e.Asset)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	}

	resources := []reserve.ReservationResource{}
	for i := range reservations {
		certificate, err := model.LoadCertificateByReservation(ctx,
			reservations[i].Token)
		if err != nil {
			return nil, nil, errors.Trace(err) // 500
		}
		certificateUUID := ""
		if certificate != nil {
			certificateUUID = certificate.UUID
		}
		resources = append(resources,
			reserve.NewReservationResource(ctx,
				&reservations[i], certificateUUID))
	}

	db.Commit(ctx, "reserve")

	return ptr.Int(http.StatusOK), &svc.Resp{
		"reservations": format.JSONPtr(resources),
	}, nil
}
