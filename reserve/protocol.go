package reserve

import (
	"context"
	"math/big"

	"github.com/egimarket/reserve/reserve/model"
)

// ReservationResource is the representation of a reservation in the reserve
// API.
type ReservationResource struct {
	ID       string `json:"id"`
	Created  int64  `json:"created"`
	Livemode bool   `json:"livemode"`

	Asset  string `json:"asset"`
	Wallet string `json:"wallet"`

	Kind        string   `json:"kind"`
	Amount      *big.Int `json:"amount"`
	TokenAmount *big.Int `json:"token_amount"`

	Status          string `json:"status"`
	Priority        int64  `json:"priority"`
	HighestPriority bool   `json:"highest_priority"`

	Certificate string `json:"certificate"`
}

// NewReservationResource generates a new resource.
func NewReservationResource(
	ctx context.Context,
	reservation *model.Reservation,
	certificateUUID string,
) ReservationResource {
	return ReservationResource{
		ID:       reservation.Token,
		Created:  reservation.Created.UnixNano() / TimeResolutionNs,
		Livemode: reservation.Livemode,

		Asset:  reservation.Asset,
		Wallet: reservation.Wallet,

		Kind:        string(reservation.Kind),
		Amount:      (*big.Int)(&reservation.Amount),
		TokenAmount: (*big.Int)(&reservation.TokenAmount),

		Status:   string(reservation.Status),
		Priority: reservation.Priority,
		HighestPriority: reservation.Status == model.RvStActive &&
			reservation.Priority == 0,

		Certificate: certificateUUID,
	}
}

// CertificateResource is the representation of a certificate in the reserve
// API. It carries every canonical field so that third parties can rebuild
// the canonical payload and re-verify the signature independently.
type CertificateResource struct {
	UUID     string `json:"uuid"`
	Created  int64  `json:"created"`
	Livemode bool   `json:"livemode"`

	Reservation string `json:"reservation"`

	Asset              string   `json:"asset"`
	Wallet             string   `json:"wallet"`
	Kind               string   `json:"kind"`
	Amount             *big.Int `json:"amount"`
	TokenAmount        *big.Int `json:"token_amount"`
	ReservationCreated int64    `json:"reservation_created"`

	Signature string `json:"signature"`
}

// NewCertificateResource generates a new resource.
func NewCertificateResource(
	ctx context.Context,
	certificate *model.Certificate,
) CertificateResource {
	return CertificateResource{
		UUID:     certificate.UUID,
		Created:  certificate.Created.UnixNano() / TimeResolutionNs,
		Livemode: certificate.Livemode,

		Reservation: certificate.Reservation,

		Asset:       certificate.Asset,
		Wallet:      certificate.Wallet,
		Kind:        string(certificate.Kind),
		Amount:      (*big.Int)(&certificate.Amount),
		TokenAmount: (*big.Int)(&certificate.TokenAmount),
		ReservationCreated: certificate.ReservationCreated.UnixNano() /
			TimeResolutionNs,

		Signature: certificate.Signature,
	}
}

// VerificationResource is the result of a certificate verification.
type VerificationResource struct {
	Certificate string `json:"certificate"`

	Valid               bool `json:"valid"`
	IsHighestPriority   bool `json:"is_highest_priority"`
	AssetStillAvailable bool `json:"asset_still_available"`
}
