package app

import "errors"

var (
	// ErrNoEngine indicates the service was built without a scoring engine.
	ErrNoEngine = errors.New("no scoring engine configured")

	// ErrNoStore indicates the service was built without a run store.
	ErrNoStore = errors.New("no run store configured")
)
