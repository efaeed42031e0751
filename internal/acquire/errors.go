package acquire

import "fmt"

// AcquisitionError records one image that could not be loaded. The image is
// skipped; it never takes a placement slot.
type AcquisitionError struct {
	Index  int    // position in the requested sequence
	Source string // URL or path
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }
