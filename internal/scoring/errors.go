package scoring

import (
	"errors"
	"fmt"
)

// ErrEmptyText is returned when one side of a comparison has no text.
var ErrEmptyText = errors.New("text is empty")

// EmbeddingError reports that a posting could not be scored. Callers skip the
// posting and keep the run going.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
