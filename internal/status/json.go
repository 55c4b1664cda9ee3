package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/swamp-cooler/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string           `json:"state"`
	Ready         bool             `json:"ready"`
	Motor         bool             `json:"motor"`
	VentAngle     int              `json:"vent_angle"`
	Environment   *EnvironmentJSON `json:"environment,omitempty"`
	RunSeconds    int64            `json:"run_seconds,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Timestamp     string           `json:"timestamp"`
	Counts        CountsJSON       `json:"state_entries"`
	Thresholds    ThresholdsJSON   `json:"thresholds"`
	Display       [2]string        `json:"display"`
}

// EnvironmentJSON is the JSON representation of the last sample.
type EnvironmentJSON struct {
	Temperature float64 `json:"temperature_c"`
	Humidity    float64 `json:"humidity_pct"`
	WaterLevel  uint16  `json:"water_level"`
}

// CountsJSON is the JSON representation of state entry counts.
type CountsJSON struct {
	Disabled int `json:"disabled"`
	Idle     int `json:"idle"`
	Running  int `json:"running"`
	Fault    int `json:"fault"`
}

// ThresholdsJSON reports the compiled-in thresholds.
type ThresholdsJSON struct {
	Temperature float64 `json:"temperature_c"`
	Water       uint16  `json:"water_level"`
}

// FormatJSON returns the indented JSON status of snap, stamped with wall time now.
func FormatJSON(snap Snapshot, th logic.Thresholds, now time.Time) []byte {
	inner := StatusInner{
		State:         snap.State.String(),
		Ready:         snap.Sampled,
		Motor:         snap.MotorOn,
		VentAngle:     snap.VentAngle,
		RunSeconds:    int64(snap.RunTime().Truncate(time.Second).Seconds()),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			Disabled: snap.Counts.Disabled,
			Idle:     snap.Counts.Idle,
			Running:  snap.Counts.Running,
			Fault:    snap.Counts.Fault,
		},
		Thresholds: ThresholdsJSON{Temperature: th.Temperature, Water: th.Water},
		Display:    Render(snap),
	}
	if snap.Sampled {
		inner.Environment = &EnvironmentJSON{
			Temperature: snap.Env.Temperature,
			Humidity:    snap.Env.Humidity,
			WaterLevel:  snap.Env.WaterLevel,
		}
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
