// Package input turns the raw button lines into ButtonEvents.
//
// The Disable button is a discrete mode switch: a press is reported once and
// PollButtons waits for the physical release before returning. The vent-trim
// buttons are continuous: they are reported as held on every poll while down.
package input

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/clock"
	"github.com/sweeney/swamp-cooler/internal/gpio"
	"github.com/sweeney/swamp-cooler/internal/logic"
)

// Config tunes the release wait of the Disable button.
type Config struct {
	// PollInterval is the delay between raw reads while waiting for release.
	PollInterval time.Duration
	// Settle is waited after release to swallow contact bounce.
	Settle time.Duration
	// ReleaseTimeout bounds the release wait. Zero waits forever.
	ReleaseTimeout time.Duration
}

// DefaultConfig returns the default release-wait tuning.
func DefaultConfig() Config {
	return Config{
		PollInterval:   5 * time.Millisecond,
		Settle:         20 * time.Millisecond,
		ReleaseTimeout: 5 * time.Second,
	}
}

// Buttons polls the three operator buttons.
type Buttons struct {
	disable  gpio.InputLine
	ventUp   gpio.InputLine
	ventDown gpio.InputLine
	clock    clock.Clock
	cfg      Config

	// latched is set when a release wait timed out; the Disable line is
	// ignored until it is seen released.
	latched bool
}

// New creates Buttons over the input lines of l.
func New(l gpio.Lines, c clock.Clock, cfg Config) *Buttons {
	return &Buttons{
		disable:  l.Disable,
		ventUp:   l.VentUp,
		ventDown: l.VentDown,
		clock:    c,
		cfg:      cfg,
	}
}

// PollButtons reports at most one event. Disable wins over the vent buttons,
// and vent-up wins over vent-down.
func (b *Buttons) PollButtons() logic.ButtonEvent {
	if b.latched && !b.pressed(b.disable, "disable") {
		b.latched = false
	}
	if !b.latched && b.pressed(b.disable, "disable") {
		b.waitRelease()
		return logic.ButtonDisableToggled
	}
	if b.pressed(b.ventUp, "vent-up") {
		return logic.ButtonVentUpHeld
	}
	if b.pressed(b.ventDown, "vent-down") {
		return logic.ButtonVentDownHeld
	}
	return logic.ButtonNone
}

// Latched reports whether the Disable button is being ignored after a timed-out release wait.
func (b *Buttons) Latched() bool {
	return b.latched
}

func (b *Buttons) waitRelease() {
	start := b.clock.Millis()
	for b.pressed(b.disable, "disable") {
		if b.cfg.ReleaseTimeout > 0 && b.clock.Millis()-start >= b.cfg.ReleaseTimeout.Milliseconds() {
			log.WithField("held", b.cfg.ReleaseTimeout).Warn("input: disable button still held, ignoring it until released")
			b.latched = true
			return
		}
		b.clock.Sleep(b.cfg.PollInterval)
	}
	b.clock.Sleep(b.cfg.Settle)
}

func (b *Buttons) pressed(l gpio.InputLine, name string) bool {
	v, err := l.Value()
	if err != nil {
		log.WithError(err).WithField("button", name).Warn("input: read failed")
		return false
	}
	return v == 1
}
