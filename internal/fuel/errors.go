package fuel

import (
	"errors"
	"fmt"
)

var (
	ErrFieldNotDetected = errors.New("could not detect a fuel field")
	ErrNoData           = fmt.Errorf("%w: first page returned no rows", ErrFieldNotDetected)
	ErrInvalidUnit      = errors.New("invalid fuel unit")
	ErrInvalidPageSize  = errors.New("page size must be positive")
	ErrNonFinite        = errors.New("fuel total is not a finite number")
)
