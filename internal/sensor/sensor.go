// Package sensor paces the environment probes of the controller.
package sensor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/clock"
	"github.com/sweeney/swamp-cooler/internal/logic"
)

// DefaultInterval is the minimum time between temperature/humidity samples.
const DefaultInterval = 4 * time.Second

// ClimateProbe takes one temperature/humidity measurement without waiting.
type ClimateProbe interface {
	Read() (logic.Reading, error)
}

// LevelProbe reads the raw reservoir level synchronously.
type LevelProbe interface {
	Read() (uint16, error)
}

// Sampler paces a ClimateProbe to at most one sample per interval and reads
// the reservoir level on demand.
type Sampler struct {
	clock    clock.Clock
	climate  ClimateProbe
	level    LevelProbe
	interval int64 // ms

	lastAttempt int64
	lastLevel   uint16

	misses int
}

// NewSampler creates a sampler whose first sample is due one interval from now.
func NewSampler(c clock.Clock, climate ClimateProbe, level LevelProbe, interval time.Duration) *Sampler {
	return &Sampler{
		clock:       c,
		climate:     climate,
		level:       level,
		interval:    interval.Milliseconds(),
		lastAttempt: c.Millis(),
	}
}

// ReadTemperatureHumidity returns a new sample, or false when the interval has
// not elapsed or the probe failed. The window restarts when the probe returns,
// so neither a slow nor a failing sensor is retried back to back.
func (s *Sampler) ReadTemperatureHumidity() (logic.Reading, bool) {
	if s.clock.Millis()-s.lastAttempt < s.interval {
		return logic.Reading{}, false
	}

	r, err := s.climate.Read()
	s.lastAttempt = s.clock.Millis()
	if err != nil {
		s.misses++
		log.WithError(err).WithField("misses", s.misses).Debug("sensor: no climate sample")
		return logic.Reading{}, false
	}
	return r, true
}

// ReadWaterLevel reads the reservoir. On a probe error the last good level is
// returned; before any good read that is zero, which reads as a dry reservoir.
func (s *Sampler) ReadWaterLevel() uint16 {
	v, err := s.level.Read()
	if err != nil {
		log.WithError(err).Warn("sensor: water level read failed")
		return s.lastLevel
	}
	s.lastLevel = v
	return v
}

// Misses returns the number of failed climate probes since startup.
func (s *Sampler) Misses() int {
	return s.misses
}
