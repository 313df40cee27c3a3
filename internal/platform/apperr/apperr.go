// Package apperr holds the request-validation sentinel shared by the
// feature services. Domain-specific failures live with their feature.
package apperr

import "errors"

// ErrInvalid marks missing or malformed input. The HTTP layer maps it
// to 400; everything else in a service's error surface is either a
// feature sentinel or a server error.
var ErrInvalid = errors.New("invalid input")
