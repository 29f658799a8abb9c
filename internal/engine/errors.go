package engine

import "errors"

// ErrInvalidWindow reports a dataset whose explicit window bounds are
// unusable.
var ErrInvalidWindow = errors.New("invalid analysis window")
