//go:build !linux || tinygo

package gpio

import "errors"

// RealBoard is not available on non-Linux platforms.
type RealBoard struct{}

// NewRealBoard returns an error on non-Linux platforms.
func NewRealBoard(chipName string, pins Pins) (*RealBoard, error) {
	return nil, errors.New("gpio: not supported on this platform (requires the Linux GPIO character device)")
}

// Lines returns no lines on non-Linux platforms.
func (b *RealBoard) Lines() Lines {
	return Lines{}
}

// Close is not implemented on non-Linux platforms.
func (b *RealBoard) Close() error {
	return nil
}
