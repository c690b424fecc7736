package app

import (
	"github.com/egimarket/reserve/reserve/endpoint"
	"goji.io"
	"goji.io/pat"
)

// Controller binds the API
type Controller struct{}

// Bind registers the API routes.
func (c *Controller) Bind(
	mux *goji.Mux,
) {
	// Reservations.
	mux.HandleFunc(pat.Post("/assets/:asset/reservations"), endpoint.HandlerFor(endpoint.EndPtCreateReservation))
	mux.HandleFunc(pat.Get("/assets/:asset/reservations"), endpoint.HandlerFor(endpoint.EndPtListAssetReservations))
	mux.HandleFunc(pat.Get("/reservations/:reservation"), endpoint.HandlerFor(endpoint.EndPtRetrieveReservation))
	mux.HandleFunc(pat.Delete("/reservations/:reservation"), endpoint.HandlerFor(endpoint.EndPtCancelReservation))

	// Certificates.
	mux.HandleFunc(pat.Get("/certificates/:certificate"), endpoint.HandlerFor(endpoint.EndPtRetrieveCertificate))
	mux.HandleFunc(pat.Get("/certificates/:certificate/verify"), endpoint.HandlerFor(endpoint.EndPtVerifyCertificate))
}
