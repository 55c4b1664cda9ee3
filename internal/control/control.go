// Package control runs the swamp cooler state machine against injected ports.
package control

import (
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/clock"
	"github.com/sweeney/swamp-cooler/internal/display"
	"github.com/sweeney/swamp-cooler/internal/logic"
	"github.com/sweeney/swamp-cooler/internal/status"
)

// SensorPort supplies environment samples.
type SensorPort interface {
	// ReadTemperatureHumidity returns a new sample, or false if none is available this step.
	ReadTemperatureHumidity() (logic.Reading, bool)
	// ReadWaterLevel reads the reservoir synchronously.
	ReadWaterLevel() uint16
}

// ActuatorPort drives the outputs.
type ActuatorPort interface {
	SetIndicator(s logic.State) error
	SetMotor(on bool) error
	SetVentAngle(angle int) error
}

// InputPort reports operator buttons.
type InputPort interface {
	PollButtons() logic.ButtonEvent
}

// EventSink receives every state change.
type EventSink interface {
	OnTransition(tr logic.Transition)
}

// Config wires a Loop to its collaborators.
type Config struct {
	Sensors   SensorPort
	Actuators ActuatorPort
	Inputs    InputPort
	Clock     clock.Clock

	// Thresholds defaults to logic.DefaultThresholds when zero.
	Thresholds logic.Thresholds

	// Events and Display are optional.
	Events  EventSink
	Display display.Display
}

// Loop owns the controller state. It is not safe for concurrent use;
// one goroutine calls Step forever.
type Loop struct {
	sensors SensorPort
	act     ActuatorPort
	inputs  InputPort
	clock   clock.Clock
	th      logic.Thresholds
	events  EventSink
	display display.Display

	state        logic.State
	env          logic.Environment
	sampled      bool
	vent         int
	motorOn      bool
	runningSince int64
	counts       logic.TransitionCounts
}

// New creates a Loop in the Disabled state and asserts its initial outputs:
// motor off, Disabled indicator, vent centred.
func New(cfg Config) *Loop {
	th := cfg.Thresholds
	if th == (logic.Thresholds{}) {
		th = logic.DefaultThresholds
	}
	l := &Loop{
		sensors: cfg.Sensors,
		act:     cfg.Actuators,
		inputs:  cfg.Inputs,
		clock:   cfg.Clock,
		th:      th,
		events:  cfg.Events,
		display: cfg.Display,
		state:   logic.StateDisabled,
		vent:    logic.VentInitial,
	}

	l.setMotor(false)
	l.warn(l.act.SetIndicator(l.state), "set indicator")
	l.warn(l.act.SetVentAngle(l.vent), "set vent angle")
	l.show()
	return l
}

// Step runs one iteration: poll the buttons, then try for a new sample.
// It returns the state after the step. The state changes at most once per step.
func (l *Loop) Step() logic.State {
	if !l.state.Valid() {
		next, _ := logic.Next(l.state, logic.TriggerRecover, l.env, l.th)
		l.transition(next, logic.TriggerRecover)
		l.show()
		return l.state
	}

	switch ev := l.inputs.PollButtons(); ev {
	case logic.ButtonVentUpHeld, logic.ButtonVentDownHeld:
		l.trimVent(ev)
	case logic.ButtonDisableToggled:
		if next, ok := logic.Next(l.state, logic.TriggerToggle, l.env, l.th); ok {
			l.transition(next, logic.TriggerToggle)
			l.show()
			return l.state
		}
		log.WithField("state", l.state.String()).Debug("control: disable toggle ignored")
	}

	r, ok := l.sensors.ReadTemperatureHumidity()
	if !ok {
		return l.state
	}
	l.env = logic.Environment{
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		WaterLevel:  l.sensors.ReadWaterLevel(),
	}
	l.sampled = true

	if next, ok := logic.Next(l.state, logic.TriggerSample, l.env, l.th); ok {
		l.transition(next, logic.TriggerSample)
	}
	l.show()
	return l.state
}

// State returns the current state.
func (l *Loop) State() logic.State {
	return l.state
}

// VentAngle returns the current vent angle.
func (l *Loop) VentAngle() int {
	return l.vent
}

// Snapshot returns a point-in-time view of the loop.
func (l *Loop) Snapshot() status.Snapshot {
	return status.Snapshot{
		State:          l.state,
		Env:            l.env,
		Sampled:        l.sampled,
		VentAngle:      l.vent,
		MotorOn:        l.motorOn,
		RunningSinceMs: l.runningSince,
		NowMs:          l.clock.Millis(),
		Counts:         l.counts,
	}
}

// Shutdown stops the motor. It is used when the host process exits;
// the loop must not be stepped afterwards.
func (l *Loop) Shutdown() {
	l.setMotor(false)
}

// transition moves to next. Leaving Running stops the motor before anything
// else; entering Running starts it after the indicator changes.
func (l *Loop) transition(next logic.State, trig logic.Trigger) {
	from := l.state
	if from == logic.StateRunning || !from.Valid() {
		l.setMotor(false)
	}
	l.warn(l.act.SetIndicator(next), "set indicator")
	if next == logic.StateRunning {
		l.setMotor(true)
		l.runningSince = l.clock.Millis()
	}

	l.state = next
	l.counts.Add(next)

	if l.events != nil {
		l.events.OnTransition(logic.Transition{
			From:    from,
			To:      next,
			Trigger: trig,
			AtMs:    l.clock.Millis(),
			Env:     l.env,
		})
	}
}

func (l *Loop) trimVent(ev logic.ButtonEvent) {
	next := logic.TrimVent(l.vent, ev)
	if next == l.vent {
		return
	}
	l.vent = next

	dir := "up"
	if ev == logic.ButtonVentDownHeld {
		dir = "down"
	}
	log.WithField("angle", next).Debugf("Moving %s", dir)
	l.warn(l.act.SetVentAngle(next), "set vent angle")
}

func (l *Loop) setMotor(on bool) {
	l.motorOn = on
	l.warn(l.act.SetMotor(on), "set motor")
}

func (l *Loop) show() {
	if l.display == nil {
		return
	}
	if err := l.display.Show(status.Render(l.Snapshot())); err != nil {
		log.WithError(err).Debug("control: display update failed")
	}
}

func (l *Loop) warn(err error, what string) {
	if err != nil {
		log.WithError(err).WithField("state", l.state.String()).Warnf("control: %s", what)
	}
}
