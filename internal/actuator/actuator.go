// Package actuator drives the indicator lights, cooling motor and vent servo.
package actuator

import (
	"fmt"

	"github.com/sweeney/swamp-cooler/internal/gpio"
	"github.com/sweeney/swamp-cooler/internal/logic"
	"github.com/sweeney/swamp-cooler/internal/servo"
)

// Panel owns the controller outputs.
type Panel struct {
	indicators [4]gpio.OutputLine
	motor      gpio.OutputLine
	vent       servo.Servo

	lit      logic.State
	hasLit   bool
	motorOn  bool
	motorSet bool
	angle    int
}

// NewPanel creates a panel. Nothing is driven until the first Set call.
func NewPanel(l gpio.Lines, vent servo.Servo) *Panel {
	return &Panel{
		indicators: l.Indicators,
		motor:      l.Motor,
		vent:       vent,
		angle:      -1,
	}
}

// SetIndicator lights the indicator for s, clearing the previous one first.
// An unknown state only clears.
func (p *Panel) SetIndicator(s logic.State) error {
	if p.hasLit {
		if p.lit == s {
			return nil
		}
		if err := p.indicators[p.lit].SetValue(0); err != nil {
			return fmt.Errorf("clear %s indicator: %w", p.lit, err)
		}
		p.hasLit = false
	}
	if !s.Valid() {
		return nil
	}
	if err := p.indicators[s].SetValue(1); err != nil {
		return fmt.Errorf("set %s indicator: %w", s, err)
	}
	p.lit, p.hasLit = s, true
	return nil
}

// ClearIndicators switches every indicator off.
func (p *Panel) ClearIndicators() error {
	for i, l := range p.indicators {
		if err := l.SetValue(0); err != nil {
			return fmt.Errorf("clear %s indicator: %w", logic.State(i), err)
		}
	}
	p.hasLit = false
	return nil
}

// SetMotor switches the cooling motor. Repeating the current value writes nothing.
func (p *Panel) SetMotor(on bool) error {
	if p.motorSet && p.motorOn == on {
		return nil
	}
	v := 0
	if on {
		v = 1
	}
	if err := p.motor.SetValue(v); err != nil {
		return fmt.Errorf("set motor: %w", err)
	}
	p.motorOn, p.motorSet = on, true
	return nil
}

// SetVentAngle moves the vent, clamping silently to the mechanical range.
func (p *Panel) SetVentAngle(angle int) error {
	angle = logic.ClampVent(angle)
	if angle == p.angle {
		return nil
	}
	if err := p.vent.SetAngle(angle); err != nil {
		return fmt.Errorf("set vent angle %d: %w", angle, err)
	}
	p.angle = angle
	return nil
}

// MotorOn reports the last motor value written.
func (p *Panel) MotorOn() bool {
	return p.motorOn
}
