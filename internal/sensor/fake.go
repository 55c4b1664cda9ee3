package sensor

import (
	"errors"

	"github.com/sweeney/swamp-cooler/internal/logic"
)

// ErrNoSample is returned by FakeClimate when it is scripted to fail.
var ErrNoSample = errors.New("sensor: no sample")

// FakeClimate returns a fixed reading, or ErrNoSample while Fail is set.
type FakeClimate struct {
	Reading logic.Reading
	Fail    bool
	Calls   int

	// OnRead, if set, runs inside Read (e.g. to advance a fake clock).
	OnRead func()
}

// Read implements ClimateProbe.
func (f *FakeClimate) Read() (logic.Reading, error) {
	f.Calls++
	if f.OnRead != nil {
		f.OnRead()
	}
	if f.Fail {
		return logic.Reading{}, ErrNoSample
	}
	return f.Reading, nil
}

// FakeLevel returns a fixed level, or Err when set.
type FakeLevel struct {
	Level uint16
	Err   error
	Calls int
}

// Read implements LevelProbe.
func (f *FakeLevel) Read() (uint16, error) {
	f.Calls++
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Level, nil
}
