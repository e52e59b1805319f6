//go:build !linux

package button

import (
	"errors"
	"time"
)

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(chipName string, modePin, targetPin int, longPress time.Duration) (*RealSource, error) {
	return nil, errors.New("button: not supported on this platform (requires Linux)")
}

// Presses is not implemented on non-Linux platforms.
func (s *RealSource) Presses() <-chan Press {
	return nil
}

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error {
	return nil
}
