package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is the sentinel kind for per-record normalization
// failures. Callers use errors.Is against it; individual failures carry
// record context via MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports one raw record that could not be normalized.
// These are recoverable: the record is skipped and tallied, never fatal to
// the run.
type MalformedRecordError struct {
	RecordKind string // "pull_request" or "review"
	RecordID   string // may be empty when the id itself is missing
	Reason     string
}

func (e *MalformedRecordError) Error() string {
	id := e.RecordID
	if id == "" {
		id = "<missing id>"
	}
	return fmt.Sprintf("malformed %s record %s: %s", e.RecordKind, id, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedRecord) match.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
