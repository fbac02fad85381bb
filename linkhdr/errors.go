package linkhdr

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration    = errors.New("invalid link options")
	ErrMalformedSegment = errors.New("malformed link segment")
	ErrMissingRelation  = errors.New("link has no rel attribute")
	ErrUnknownRelation  = errors.New("unknown link relation")
	ErrMultipleValues   = errors.New("expected exactly one link header value")
)

// SegmentError is returned when a single segment of a header value
// could not be parsed. No links are returned in that case.
type SegmentError struct {
	Segment string
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Segment)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// ConfigError is returned by NewOptions for an invalid option.
type ConfigError struct {
	Option string
	Value  interface{}
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("%v: %v", ErrConfiguration, e.Err)
	}
	return fmt.Sprintf("%v: %s=%#v: %v", ErrConfiguration, e.Option, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}
