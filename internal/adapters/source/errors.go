package source

import "errors"

var (
	// ErrOpenDataset indicates the dataset file could not be opened or read.
	ErrOpenDataset = errors.New("failed to open dataset")

	// ErrDecodeDataset indicates the dataset payload is not valid JSON of the
	// expected shape.
	ErrDecodeDataset = errors.New("failed to decode dataset")
)
