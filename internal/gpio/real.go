//go:build linux && !tinygo

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealBoard owns the controller's lines on a Linux GPIO character device.
type RealBoard struct {
	chip    *gpiocdev.Chip
	inputs  []*gpiocdev.Line
	outputs []*gpiocdev.Line
}

// NewRealBoard requests every line in pins from the named chip (e.g. "gpiochip0").
// Buttons are inputs with pull-down (pressed = high). LEDs and motor start low.
func NewRealBoard(chipName string, pins Pins) (*RealBoard, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("swamp-cooler"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealBoard{chip: chip}
	for _, offset := range pins.inputs() {
		l, err := chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request input pin %d: %w", offset, err)
		}
		b.inputs = append(b.inputs, l)
	}
	for _, offset := range pins.outputs() {
		l, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request output pin %d: %w", offset, err)
		}
		b.outputs = append(b.outputs, l)
	}
	return b, nil
}

// Lines returns the board's lines in controller order.
func (b *RealBoard) Lines() Lines {
	return Lines{
		Disable:  b.inputs[0],
		VentUp:   b.inputs[1],
		VentDown: b.inputs[2],
		Indicators: [4]OutputLine{
			b.outputs[0], b.outputs[1], b.outputs[2], b.outputs[3],
		},
		Motor: b.outputs[4],
	}
}

// Close drives outputs low, returns every line to input with pull-down
// (matching Pi boot defaults) and releases the chip.
func (b *RealBoard) Close() error {
	var errs []error

	for _, l := range b.outputs {
		if err := l.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear output %d: %w", l.Offset(), err))
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure output %d: %w", l.Offset(), err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output %d: %w", l.Offset(), err))
		}
	}
	for _, l := range b.inputs {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input %d: %w", l.Offset(), err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	b.inputs, b.outputs = nil, nil
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
