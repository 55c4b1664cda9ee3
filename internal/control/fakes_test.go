package control

import (
	"errors"
	"fmt"

	"github.com/sweeney/swamp-cooler/internal/logic"
)

// fakeSensors hands out one injected sample per inject call.
type fakeSensors struct {
	pending    bool
	reading    logic.Reading
	water      uint16
	thCalls    int
	waterCalls int
}

func (f *fakeSensors) inject(temp float64, water uint16) {
	f.pending = true
	f.reading = logic.Reading{Temperature: temp, Humidity: 45}
	f.water = water
}

func (f *fakeSensors) ReadTemperatureHumidity() (logic.Reading, bool) {
	f.thCalls++
	if !f.pending {
		return logic.Reading{}, false
	}
	f.pending = false
	return f.reading, true
}

func (f *fakeSensors) ReadWaterLevel() uint16 {
	f.waterCalls++
	return f.water
}

// fakeActuators tracks the asserted outputs and the order of writes.
type fakeActuators struct {
	indicator    logic.State
	hasIndicator bool
	motor        bool
	motorStarts  int
	angles       []int
	ops          []string
	failAll      bool
}

func (f *fakeActuators) SetIndicator(s logic.State) error {
	f.ops = append(f.ops, "indicator:"+s.String())
	if f.failAll {
		return errors.New("indicator line busy")
	}
	f.indicator, f.hasIndicator = s, s.Valid()
	return nil
}

func (f *fakeActuators) SetMotor(on bool) error {
	f.ops = append(f.ops, fmt.Sprintf("motor:%v", on))
	if f.failAll {
		return errors.New("motor line busy")
	}
	if on && !f.motor {
		f.motorStarts++
	}
	f.motor = on
	return nil
}

func (f *fakeActuators) SetVentAngle(angle int) error {
	f.ops = append(f.ops, fmt.Sprintf("vent:%d", angle))
	if f.failAll {
		return errors.New("servo gone")
	}
	f.angles = append(f.angles, angle)
	return nil
}

func (f *fakeActuators) resetOps() {
	f.ops = nil
}

// fakeInputs returns queued events, then ButtonNone.
type fakeInputs struct {
	queue []logic.ButtonEvent
}

func (f *fakeInputs) push(evs ...logic.ButtonEvent) {
	f.queue = append(f.queue, evs...)
}

func (f *fakeInputs) PollButtons() logic.ButtonEvent {
	if len(f.queue) == 0 {
		return logic.ButtonNone
	}
	ev := f.queue[0]
	f.queue = f.queue[1:]
	return ev
}

type recordingSink struct {
	transitions []logic.Transition
}

func (r *recordingSink) OnTransition(tr logic.Transition) {
	r.transitions = append(r.transitions, tr)
}
