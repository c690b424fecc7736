package model

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/egimarket/reserve/lib/db"
	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/lib/livemode"
	"github.com/egimarket/reserve/lib/signature"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Certificate is the issued, independently verifiable proof of a
// reservation's priority position at issuance time. Certificates are created
// once, in the same transaction as their reservation, and never mutated. A
// superseded reservation's certificate remains retrievable and still
// verifies.
type Certificate struct {
	UUID     string
	Created  time.Time
	Livemode bool

	Reservation string // Owning reservation token.

	Asset              string
	Wallet             string
	Kind               RvKind
	Amount             Amount
	TokenAmount        Amount    `db:"token_amount"`
	ReservationCreated time.Time `db:"reservation_created"`

	Signature string // Hex Ed25519 signature over CanonicalPayload.
}

// CanonicalPayload returns the deterministic serialization of the
// certificate's fixed fields, signed at issuance and recomputed at
// verification. The format is the `|`-joined sequence:
//
//	uuid|asset|wallet|kind|amount|token_amount|reservation_created_unixnano
//
// Field order is fixed, amounts are base-10, the timestamp is UTC
// nanoseconds; there are no optional fields.
func (c *Certificate) CanonicalPayload() []byte {
	return []byte(strings.Join([]string{
		c.UUID,
		c.Asset,
		c.Wallet,
		string(c.Kind),
		(*big.Int)(&c.Amount).String(),
		(*big.Int)(&c.TokenAmount).String(),
		strconv.FormatInt(c.ReservationCreated.UTC().UnixNano(), 10),
	}, "|"))
}

// CheckSignature recomputes the signature over the stored canonical fields
// and compares it to the stored one. A false result signals tampering or
// corruption and is definitive; it is never retried.
func (c *Certificate) CheckSignature(
	signer *signature.Signer,
) bool {
	return signer.Verify(c.CanonicalPayload(), c.Signature)
}

// CreateCertificate issues and stores the certificate for the provided
// reservation. It must be called exactly once per reservation, inside the
// transaction that created it.
func CreateCertificate(
	ctx context.Context,
	reservation *Reservation,
	signer *signature.Signer,
) (*Certificate, error) {
	certificate := Certificate{
		UUID:     uuid.New().String(),
		Livemode: livemode.Get(ctx),
		Created:  time.Now().UTC(),

		Reservation:        reservation.Token,
		Asset:              reservation.Asset,
		Wallet:             reservation.Wallet,
		Kind:               reservation.Kind,
		Amount:             reservation.Amount,
		TokenAmount:        reservation.TokenAmount,
		ReservationCreated: reservation.Created,
	}
	certificate.Signature = signer.Sign(certificate.CanonicalPayload())

	ext := db.Ext(ctx, "reserve")
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO certificates
  (uuid, livemode, created, reservation, asset, wallet, kind, amount,
   token_amount, reservation_created, signature)
VALUES
  (:uuid, :livemode, :created, :reservation, :asset, :wallet, :kind, :amount,
   :token_amount, :reservation_created, :signature)
`, certificate); err != nil {
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

	return &certificate, nil
}

// LoadCertificateByUUID attempts to load a certificate for the given uuid.
func LoadCertificateByUUID(
	ctx context.Context,
	id string,
) (*Certificate, error) {
	certificate := Certificate{
		Livemode: livemode.Get(ctx),
		UUID:     id,
	}

	ext := db.Ext(ctx, "reserve")
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM certificates
WHERE livemode = :livemode
  AND uuid = :uuid
`, certificate); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&certificate); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &certificate, nil
}

// LoadCertificateByReservation attempts to load the certificate issued for
// the given reservation token.
func LoadCertificateByReservation(
	ctx context.Context,
	reservation string,
) (*Certificate, error) {
	certificate := Certificate{
		Livemode:    livemode.Get(ctx),
		Reservation: reservation,
	}

	ext := db.Ext(ctx, "reserve")
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM certificates
WHERE livemode = :livemode
  AND reservation = :reservation
`, certificate); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&certificate); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &certificate, nil
}
