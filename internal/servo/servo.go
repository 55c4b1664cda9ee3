// Package servo drives the vent servo.
package servo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sweeney/swamp-cooler/internal/mathx"
)

// Servo positions a hobby servo by angle in degrees.
type Servo interface {
	SetAngle(angle int) error
}

// PulseRange maps 0..180 degrees onto a pulse width.
type PulseRange struct {
	Min time.Duration // pulse at 0°
	Max time.Duration // pulse at 180°
}

// DefaultPulseRange suits SG90-class servos.
var DefaultPulseRange = PulseRange{Min: 500 * time.Microsecond, Max: 2500 * time.Microsecond}

// Pulse returns the pulse width for angle, clamped to 0..180 degrees.
func (r PulseRange) Pulse(angle int) time.Duration {
	ns := mathx.Lerp(int64(angle), 0, 180, r.Min.Nanoseconds(), r.Max.Nanoseconds())
	return time.Duration(ns)
}

const period = 20 * time.Millisecond // 50 Hz

// SysfsPWM drives a servo through the kernel PWM sysfs interface,
// e.g. /sys/class/pwm/pwmchip0 channel 0 (GPIO18 with the pwm overlay).
type SysfsPWM struct {
	dir   string
	pulse PulseRange
}

// OpenSysfsPWM exports the channel if needed, sets a 50 Hz period and enables output.
func OpenSysfsPWM(chipDir string, channel int, pulse PulseRange) (*SysfsPWM, error) {
	dir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", channel))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := writeAttr(filepath.Join(chipDir, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("export pwm channel %d: %w", channel, err)
		}
	}

	s := &SysfsPWM{dir: dir, pulse: pulse}
	if err := s.write("period", period.Nanoseconds()); err != nil {
		return nil, err
	}
	if err := s.write("enable", 1); err != nil {
		return nil, err
	}
	return s, nil
}

// SetAngle sets the duty cycle for angle.
func (s *SysfsPWM) SetAngle(angle int) error {
	return s.write("duty_cycle", s.pulse.Pulse(angle).Nanoseconds())
}

// Close disables the output.
func (s *SysfsPWM) Close() error {
	return s.write("enable", 0)
}

func (s *SysfsPWM) write(attr string, v int64) error {
	if err := writeAttr(filepath.Join(s.dir, attr), strconv.FormatInt(v, 10)); err != nil {
		return fmt.Errorf("write pwm %s: %w", attr, err)
	}
	return nil
}

func writeAttr(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}

// Fake records the angles it is asked to move to.
type Fake struct {
	Angles   []int
	SetError error
}

// SetAngle records angle.
func (f *Fake) SetAngle(angle int) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Angles = append(f.Angles, angle)
	return nil
}

// Angle returns the last angle set, or -1 if none.
func (f *Fake) Angle() int {
	if len(f.Angles) == 0 {
		return -1
	}
	return f.Angles[len(f.Angles)-1]
}
