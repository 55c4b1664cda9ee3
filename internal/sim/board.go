package sim

import (
	"github.com/sweeney/swamp-cooler/internal/clock"
	"github.com/sweeney/swamp-cooler/internal/gpio"
)

// Button names one of the three operator buttons.
type Button int

const (
	ButtonDisable Button = iota
	ButtonVentUp
	ButtonVentDown
)

func (b Button) String() string {
	switch b {
	case ButtonDisable:
		return "disable"
	case ButtonVentUp:
		return "vent-up"
	case ButtonVentDown:
		return "vent-down"
	default:
		return "unknown"
	}
}

// Press holds a button down from AtMs for HoldMs milliseconds of clock time.
type Press struct {
	Button Button
	AtMs   int64
	HoldMs int64
}

// DefaultScript enables the controller shortly after start and nudges the vent.
func DefaultScript() []Press {
	return []Press{
		{Button: ButtonDisable, AtMs: 2000, HoldMs: 150},
		{Button: ButtonVentUp, AtMs: 6000, HoldMs: 400},
		{Button: ButtonVentDown, AtMs: 9000, HoldMs: 200},
	}
}

// Board is a set of simulated lines: scripted buttons and recording outputs.
type Board struct {
	clock  clock.Clock
	script []Press

	Indicators [4]*gpio.FakeOutput
	Motor      *gpio.FakeOutput
}

// NewBoard creates a board whose buttons follow script.
func NewBoard(c clock.Clock, script []Press) *Board {
	b := &Board{
		clock:  c,
		script: script,
		Motor:  &gpio.FakeOutput{},
	}
	for i := range b.Indicators {
		b.Indicators[i] = &gpio.FakeOutput{}
	}
	return b
}

// Lines returns the board's lines in controller order.
func (b *Board) Lines() gpio.Lines {
	return gpio.Lines{
		Disable:  scriptedButton{b, ButtonDisable},
		VentUp:   scriptedButton{b, ButtonVentUp},
		VentDown: scriptedButton{b, ButtonVentDown},
		Indicators: [4]gpio.OutputLine{
			b.Indicators[0], b.Indicators[1], b.Indicators[2], b.Indicators[3],
		},
		Motor: b.Motor,
	}
}

// Close drives every output low.
func (b *Board) Close() error {
	for _, o := range b.Indicators {
		if o.Value() != 0 {
			_ = o.SetValue(0)
		}
	}
	if b.Motor.Value() != 0 {
		_ = b.Motor.SetValue(0)
	}
	return nil
}

type scriptedButton struct {
	b      *Board
	button Button
}

func (s scriptedButton) Value() (int, error) {
	now := s.b.clock.Millis()
	for _, p := range s.b.script {
		if p.Button == s.button && now >= p.AtMs && now < p.AtMs+p.HoldMs {
			return 1, nil
		}
	}
	return 0, nil
}
