// Package source loads pre-fetched contribution datasets handed over by the
// acquisition side. Acquisition itself (API crawling, pagination, auth) is out
// of scope; this adapter only decodes what was already fetched.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prinsight/impactrank/internal/domain/model"
)

// Loader decodes datasets from JSON documents.
type Loader struct{}

// NewLoader creates a dataset Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile reads and decodes one dataset file.
func (l *Loader) LoadFile(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%w: %v", ErrOpenDataset, err)
	}
	defer f.Close()

	return l.Load(f)
}

// Load decodes one dataset from a reader. Structural problems (not
// per-record problems, which the normalizer tallies) fail the load: the
// document must be a single JSON object and must not carry unknown top-level
// fields, which almost always indicate a wrong or stale payload shape.
func (l *Loader) Load(r io.Reader) (model.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var ds model.Dataset
	if err := dec.Decode(&ds); err != nil {
		return model.Dataset{}, fmt.Errorf("%w: %v", ErrDecodeDataset, err)
	}

	// Trailing garbage after the object means a concatenated or corrupt
	// payload.
	if dec.More() {
		return model.Dataset{}, fmt.Errorf("%w: trailing data after dataset object", ErrDecodeDataset)
	}

	return ds, nil
}
