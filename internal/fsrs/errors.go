package fsrs

import "errors"

var (
	ErrParamsOutOfRange  = errors.New("fsrs: parameter vector has fewer than 21 weights")
	ErrInvalidParameters = errors.New("fsrs: parameter is not a finite number")
	ErrInvalidRetention  = errors.New("fsrs: request retention must be in (0, 1)")
	ErrInvalidRating     = errors.New("fsrs: invalid rating")
)
