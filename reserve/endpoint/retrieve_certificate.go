package endpoint

import (
	"context"
	"net/http"

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
	// EndPtRetrieveCertificate retrieves a certificate.
	EndPtRetrieveCertificate EndPtName = "RetrieveCertificate"
)

func init() {
	registrar[EndPtRetrieveCertificate] = NewRetrieveCertificate
}

// RetrieveCertificate retrieves a certificate by uuid. Certificates never
// mutate so this is retrievable long after the reservation terminated.
type RetrieveCertificate struct {
	UUID string
}

// NewRetrieveCertificate constructs and initializes the endpoint.
func NewRetrieveCertificate(
	r *http.Request,
) (Endpoint, error) {
	return &RetrieveCertificate{}, nil
}

// Validate validates the input parameters.
func (e *RetrieveCertificate) Validate(
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
func (e *RetrieveCertificate) Execute(
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
			"The certificate you are trying to retrieve does not exist: %s.",
			e.UUID,
		))
	}

	db.Commit(ctx, "reserve")

	return ptr.Int(http.StatusOK), &svc.Resp{
		"certificate": format.JSONPtr(reserve.NewCertificateResource(ctx,
			certificate)),
	}, nil
}
