package logic

import "github.com/sweeney/swamp-cooler/internal/mathx"

// Vent limits in degrees.
const (
	VentMin     = 60
	VentMax     = 120
	VentInitial = 90
	VentStep    = 2
)

// rule is one row of the transition table.
type rule struct {
	from    State
	trigger Trigger
	when    func(env Environment, th Thresholds) bool
	to      State
}

func always(Environment, Thresholds) bool { return true }

func waterLow(env Environment, th Thresholds) bool { return env.WaterLevel < th.Water }

func waterOK(env Environment, th Thresholds) bool { return env.WaterLevel >= th.Water }

func tooWarm(env Environment, th Thresholds) bool { return env.Temperature > th.Temperature }

func coolEnough(env Environment, th Thresholds) bool { return env.Temperature < th.Temperature }

// table is evaluated top to bottom; the first matching row wins.
// Water checks precede temperature checks so a fault pre-empts cooling.
var table = []rule{
	{StateDisabled, TriggerToggle, always, StateIdle},
	{StateIdle, TriggerSample, waterLow, StateFault},
	{StateIdle, TriggerSample, tooWarm, StateRunning},
	{StateIdle, TriggerToggle, always, StateDisabled},
	{StateRunning, TriggerSample, waterLow, StateFault},
	{StateRunning, TriggerSample, coolEnough, StateIdle},
	{StateRunning, TriggerToggle, always, StateDisabled},
	{StateFault, TriggerSample, waterOK, StateIdle},
}

// Next returns the state that follows s for the given trigger and environment.
// The second result is false when no rule matches and s is unchanged.
// Unknown states are routed back to Disabled regardless of trigger.
func Next(s State, trig Trigger, env Environment, th Thresholds) (State, bool) {
	if !s.Valid() {
		return StateDisabled, true
	}
	for _, r := range table {
		if r.from != s || r.trigger != trig {
			continue
		}
		if r.when(env, th) {
			return r.to, true
		}
	}
	return s, false
}

// TrimVent moves angle one step in the direction of ev, clamped to [VentMin, VentMax].
// Events other than the vent buttons leave the angle unchanged.
func TrimVent(angle int, ev ButtonEvent) int {
	switch ev {
	case ButtonVentUpHeld:
		angle += VentStep
	case ButtonVentDownHeld:
		angle -= VentStep
	default:
		return angle
	}
	return ClampVent(angle)
}

// ClampVent limits angle to the mechanical range of the vent.
func ClampVent(angle int) int {
	return mathx.Clamp(angle, VentMin, VentMax)
}
