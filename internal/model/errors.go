package model

import "github.com/rotisserie/eris"

// ErrInvalidInput marks a request that is missing a required field. It is
// the only error class surfaced to callers as a hard failure; every other
// condition degrades into a lower-confidence result.
var ErrInvalidInput = eris.New("invalid input")
