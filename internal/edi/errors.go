package edi

import (
	"errors"
	"fmt"
)

// ErrMalformedSegment is matched by every *MalformedSegmentError.
var ErrMalformedSegment = errors.New("malformed segment")

// MalformedSegmentError reports a recognized segment with too few elements.
type MalformedSegmentError struct {
	Tag   string
	Index int
	Got   int
	Want  int
}

func (e *MalformedSegmentError) Error() string {
	return fmt.Sprintf("segment %d (%s): has %d elements, need at least %d",
		e.Index, e.Tag, e.Got, e.Want)
}

// Is lets errors.Is(err, ErrMalformedSegment) succeed.
func (e *MalformedSegmentError) Is(target error) bool {
	return target == ErrMalformedSegment
}
