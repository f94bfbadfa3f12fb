package acads

import (
	"github.com/pkg/errors"
)

// ErrQuoteNotFound means the parent page has no quote block to write the
// CGPA into.
var ErrQuoteNotFound = errors.New("no quote block found under the parent page")

// DataShapeError reports remote data that does not have the layout this
// package depends on, or input that would produce such data.
type DataShapeError struct {
	Reason string
}

func (e *DataShapeError) Error() string {
	return "unexpected data shape: " + e.Reason
}

func dataShapef(format string, args ...interface{}) error {
	return &DataShapeError{Reason: errors.Errorf(format, args...).Error()}
}

func IsDataShape(err error) bool {
	var de *DataShapeError
	return errors.As(err, &de)
}

// IsNotFound reports whether err came from the store saying the target does
// not exist.
func IsNotFound(err error) bool {
	var nf interface{ NotFound() bool }
	return errors.As(err, &nf) && nf.NotFound()
}
