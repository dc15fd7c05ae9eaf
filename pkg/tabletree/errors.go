package tabletree

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoTable is returned when the markup holds no table at all. Callers
// treat the tree as absent.
var ErrNoTable = errors.New("markup contains no table")

// MarkupParseError reports table markup that cannot be turned into a tree.
type MarkupParseError struct {
	Reason string
	Err    error
}

func (e *MarkupParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed table markup: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed table markup: %s", e.Reason)
}

func (e *MarkupParseError) Unwrap() error {
	return e.Err
}
