// Package logic contains the pure decision logic of the swamp cooler controller.
// This package has NO external dependencies (no GPIO, sensors, OS, or sleeps).
// Time is always injectable as a millisecond counter.
package logic

// State is the control state of the cooler. The zero value is Disabled.
type State int

const (
	StateDisabled State = iota
	StateIdle
	StateRunning
	StateFault
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateDisabled:
		return "DISABLED"
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateFault:
		return "FAULT"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is one of the four known states.
func (s State) Valid() bool {
	return s >= StateDisabled && s <= StateFault
}

// MarshalText renders the state by name for JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Compile-time thresholds.
const (
	// TemperatureThreshold is the enclosure temperature (°C) above which cooling starts.
	TemperatureThreshold = 20.0
	// WaterThreshold is the raw reservoir level below which the system faults.
	WaterThreshold uint16 = 170
)

// Thresholds carries the decision thresholds into the evaluator.
type Thresholds struct {
	Temperature float64
	Water       uint16
}

// DefaultThresholds are the thresholds the controller runs with.
var DefaultThresholds = Thresholds{
	Temperature: TemperatureThreshold,
	Water:       WaterThreshold,
}

// Reading is one successful temperature/humidity sample.
type Reading struct {
	Temperature float64 // °C
	Humidity    float64 // %
}

// Environment is the last sampled view of the enclosure.
type Environment struct {
	Temperature float64
	Humidity    float64
	WaterLevel  uint16
}

// ButtonEvent is the result of one button poll.
type ButtonEvent int

const (
	ButtonNone ButtonEvent = iota
	ButtonDisableToggled
	ButtonVentUpHeld
	ButtonVentDownHeld
)

func (b ButtonEvent) String() string {
	switch b {
	case ButtonDisableToggled:
		return "DISABLE_TOGGLED"
	case ButtonVentUpHeld:
		return "VENT_UP_HELD"
	case ButtonVentDownHeld:
		return "VENT_DOWN_HELD"
	default:
		return "NONE"
	}
}

// Trigger identifies what caused a transition to be evaluated.
type Trigger int

const (
	// TriggerToggle is a Disable button toggle.
	TriggerToggle Trigger = iota
	// TriggerSample is a fresh environment sample.
	TriggerSample
	// TriggerRecover is the fail-safe route of an unknown state back to Disabled.
	TriggerRecover
)

func (t Trigger) String() string {
	switch t {
	case TriggerToggle:
		return "toggle"
	case TriggerSample:
		return "sample"
	case TriggerRecover:
		return "recover"
	default:
		return "unknown"
	}
}

// Transition records a state change for logging collaborators.
type Transition struct {
	From    State
	To      State
	Trigger Trigger
	AtMs    int64 // monotonic milliseconds
	Env     Environment
}

// MotorStarted reports whether the transition switched the motor on.
func (t Transition) MotorStarted() bool {
	return t.To == StateRunning && t.From != StateRunning
}

// MotorStopped reports whether the transition switched the motor off.
func (t Transition) MotorStopped() bool {
	return t.From == StateRunning && t.To != StateRunning
}

// TransitionCounts tracks how many times each state has been entered since startup.
type TransitionCounts struct {
	Disabled int
	Idle     int
	Running  int
	Fault    int
}

// Add counts one entry into s.
func (c *TransitionCounts) Add(s State) {
	switch s {
	case StateDisabled:
		c.Disabled++
	case StateIdle:
		c.Idle++
	case StateRunning:
		c.Running++
	case StateFault:
		c.Fault++
	}
}
