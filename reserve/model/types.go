package model

import (
	"database/sql/driver"
	"math/big"

	"github.com/egimarket/reserve/lib/errors"
)

// MaxAmount is the maximal value for an offer amount (fiat or token
// denominated).
var MaxAmount = new(big.Int).Exp(big.NewInt(2), big.NewInt(128), nil)

// Amount extends big.Int to implement sql.Scanner and driver.Valuer.
type Amount big.Int

// Scan implements sql.Scanner.
func (b *Amount) Scan(src interface{}) error {
	switch src := src.(type) {
	case int64:
		(*big.Int)(b).SetInt64(src)
	case []byte:
		if _, success := (*big.Int)(b).SetString(string(src), 10); !success {
			return errors.Newf("Impossible to set Amount with string: %q", src)
		}
	case string:
		if _, success := (*big.Int)(b).SetString(src, 10); !success {
			return errors.Newf("Impossible to set Amount with string: %q", src)
		}
	default:
		return errors.Newf("Incompatible type for Amount with value: %q", src)
	}

	return nil
}

// Value implements driver.Valuer.
func (b Amount) Value() (value driver.Value, err error) {
	return (*big.Int)(&b).String(), nil
}

// RvKind is the kind of a reservation. Strong reservations outrank weak ones
// independently of their offer amount.
type RvKind string

const (
	// RvKdStrong is used to mark a reservation as strong.
	RvKdStrong RvKind = "strong"
	// RvKdWeak is used to mark a reservation as weak.
	RvKdWeak RvKind = "weak"
)

// Value implements driver.Valuer.
func (k RvKind) Value() (value driver.Value, err error) {
	return string(k), nil
}

// Scan implements sql.Scanner.
func (k *RvKind) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		*k = RvKind(src)
	case string:
		*k = RvKind(src)
	default:
		return errors.Newf(
			"Incompatible kind for RvKind with value: %q", src)
	}

	return nil
}

// RvStatus is the status of a reservation. Statuses are monotone: an active
// reservation transitions to superseded, cancelled or expired and all three
// are absorbing.
type RvStatus string

const (
	// RvStActive is used to mark a reservation as active.
	RvStActive RvStatus = "active"
	// RvStSuperseded is used to mark a reservation as superseded by a
	// higher priority reservation.
	RvStSuperseded RvStatus = "superseded"
	// RvStCancelled is used to mark a reservation as cancelled by its
	// owner.
	RvStCancelled RvStatus = "cancelled"
	// RvStExpired is used to mark a reservation as expired.
	RvStExpired RvStatus = "expired"
)

// IsTerminal returns whether the status is an absorbing one.
func (s RvStatus) IsTerminal() bool {
	return s != RvStActive
}

// Value implements driver.Valuer.
func (s RvStatus) Value() (value driver.Value, err error) {
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *RvStatus) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		*s = RvStatus(src)
	case string:
		*s = RvStatus(src)
	default:
		return errors.Newf(
			"Incompatible status for RvStatus with value: %q", src)
	}

	return nil
}

// TkName is the name of a task.
type TkName string

// Value implements driver.Valuer.
func (n TkName) Value() (value driver.Value, err error) {
	return string(n), nil
}

// Scan implements sql.Scanner.
func (n *TkName) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		*n = TkName(src)
	case string:
		*n = TkName(src)
	default:
		return errors.Newf(
			"Incompatible name for TkName with value: %q", src)
	}

	return nil
}

// TkStatus is the status of a task.
type TkStatus string

const (
	// TkStPending is used to mark a task as pending.
	TkStPending TkStatus = "pending"
	// TkStSucceeded is used to mark a task as succeeded.
	TkStSucceeded TkStatus = "succeeded"
	// TkStFailed is used to mark a task as failed.
	TkStFailed TkStatus = "failed"
)

// Value implements driver.Valuer.
func (s TkStatus) Value() (value driver.Value, err error) {
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *TkStatus) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		*s = TkStatus(src)
	case string:
		*s = TkStatus(src)
	default:
		return errors.Newf(
			"Incompatible status for TkStatus with value: %q", src)
	}

	return nil
}
