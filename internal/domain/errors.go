package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for corpus operations. Every rejection wraps ErrInvalidArgument
// except ErrNotFound.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConstraint      = fmt.Errorf("%w: constraint violation", ErrInvalidArgument)
	ErrPageOutOfRange  = fmt.Errorf("%w: page out of range", ErrInvalidArgument)
	ErrPageTooLong     = fmt.Errorf("%w: page too long", ErrInvalidArgument)
	ErrNameTaken       = fmt.Errorf("%w: name already exists", ErrInvalidArgument)
	ErrNotFound        = errors.New("not found")
)

// constraintError wraps a validation failure as ErrConstraint.
func constraintError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrConstraint, err)
}

var errNoNameField = errors.New("at least one of first name, last name or nickname must be set")
