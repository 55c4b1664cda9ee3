// Package status renders point-in-time views of the controller for the
// character display and for --print-state.
package status

import (
	"fmt"
	"time"

	"github.com/sweeney/swamp-cooler/internal/logic"
)

// Snapshot is a point-in-time view of the controller.
// It is a value type, safe to keep after the loop moves on.
type Snapshot struct {
	State     logic.State
	Env       logic.Environment
	Sampled   bool // at least one environment sample has arrived
	VentAngle int
	MotorOn   bool

	// RunningSinceMs is the monotonic time the motor last started; valid while Running.
	RunningSinceMs int64
	NowMs          int64
	Counts         logic.TransitionCounts
}

// Uptime returns time since the controller clock started.
func (s Snapshot) Uptime() time.Duration {
	return time.Duration(s.NowMs) * time.Millisecond
}

// RunTime returns how long the motor has been running, or zero.
func (s Snapshot) RunTime() time.Duration {
	if s.State != logic.StateRunning {
		return 0
	}
	return time.Duration(s.NowMs-s.RunningSinceMs) * time.Millisecond
}

// Width is the character width of the display.
const Width = 16

// Lines is the content of a two-line character display.
type Lines [2]string

// Render returns the display content for snap: a fault or disabled banner,
// otherwise the last temperature and humidity.
func Render(snap Snapshot) Lines {
	var l Lines
	switch snap.State {
	case logic.StateFault:
		l[0] = "Error: Water Low"
	case logic.StateDisabled:
		l[0] = "Disabled"
	default:
		if !snap.Sampled {
			l[0] = "Waiting..."
			break
		}
		l[0] = fmt.Sprintf("T = %.2f deg. C", snap.Env.Temperature)
		l[1] = fmt.Sprintf("H = %.2f%%", snap.Env.Humidity)
	}
	for i := range l {
		if len(l[i]) > Width {
			l[i] = l[i][:Width]
		}
	}
	return l
}
