package bloomset

import "errors"

// ErrInvalidParameter is returned when a filter cannot be sized from the
// parameters it was given. It is always wrapped with the offending values.
var ErrInvalidParameter = errors.New("bloomset: invalid parameter")
