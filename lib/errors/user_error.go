package errors

// UserError is the interface an error has to comply to to be consumable by an
// external client. It carries the HTTP status to respond with along with a
// stable error code and a human readable message.
type UserError interface {
	error
	Status() int
	Code() string
	Message() string
	Cause() error
}

// ConcreteUserError is the materialization of a UserError for marshalling.
type ConcreteUserError struct {
	ErrStatus  int    `json:"status"`
	ErrCode    string `json:"code"`
	ErrMessage string `json:"message"`
}

// Build constructs a ConcreteUserError from a UserError.
func Build(err UserError) *ConcreteUserError {
	return &ConcreteUserError{
		ErrStatus:  err.Status(),
		ErrCode:    err.Code(),
		ErrMessage: err.Message(),
	}
}

// ExtractUserError extracts the most recent UserError attached to the error
// if any, returning nil otherwise.
func ExtractUserError(err error) UserError {
	if e, ok := err.(UserError); ok {
		if e.Status() != 0 {
			return e
		}
	}
	return nil
}
