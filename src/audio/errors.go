package audio

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned (wrapped) by constructors and setters that reject a parameter.
var ErrConfiguration = errors.New("invalid configuration")

// ErrQueueFull is returned by Control when the audio side has not drained pending commands yet.
var ErrQueueFull = errors.New("control queue is full")

// ConfigError ...
type ConfigError struct {
	Field string
	Value float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s = %v", ErrConfiguration, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// IndexError is returned by per-oscillator accessors when the index is out of range.
// The mixer is left untouched.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("oscillator index %d out of range [0, %d)", e.Index, e.Len)
}
