// Package sim provides simulated hardware for bench runs without a board:
// an enclosure that warms while the motor is off, a reservoir that drains
// while it runs and is refilled some time after running low, and buttons
// that follow a press script.
package sim

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/clock"
	"github.com/sweeney/swamp-cooler/internal/gpio"
	"github.com/sweeney/swamp-cooler/internal/logic"
	"github.com/sweeney/swamp-cooler/internal/mathx"
)

// ErrProbe is returned by the simulated climate probe on scripted failures.
var ErrProbe = errors.New("sim: checksum mismatch")

// PlantConfig describes the simulated enclosure.
type PlantConfig struct {
	StartTemp float64 // °C
	MinTemp   float64
	MaxTemp   float64
	WarmRate  float64 // °C per second while the motor is off
	CoolRate  float64 // °C per second while the motor is on

	Humidity     float64 // resting %
	HumidityRise float64 // % per second while the motor is on

	StartWater  uint16
	DrainRate   float64 // level units per second while the motor is on
	RefillAfter time.Duration
	RefillLevel uint16

	// FailEvery makes every Nth climate read fail. Zero never fails.
	FailEvery int
}

// DefaultPlantConfig cycles through every state within a couple of minutes.
func DefaultPlantConfig() PlantConfig {
	return PlantConfig{
		StartTemp:    18,
		MinTemp:      10,
		MaxTemp:      40,
		WarmRate:     0.25,
		CoolRate:     0.5,
		Humidity:     35,
		HumidityRise: 1,
		StartWater:   260,
		DrainRate:    5,
		RefillAfter:  20 * time.Second,
		RefillLevel:  400,
		FailEvery:    7,
	}
}

// Plant is the simulated enclosure and reservoir. It is integrated lazily on
// every probe read using the motor line's value at that moment. Motor changes
// follow a sample, so the value held over the whole interval.
type Plant struct {
	cfg   PlantConfig
	clock clock.Clock
	motor *gpio.FakeOutput

	temp     float64
	humidity float64
	water    float64
	lastMs   int64
	lowSince int64
	reads    int
}

// NewPlant creates a plant observing motor, the line the controller drives.
func NewPlant(c clock.Clock, motor *gpio.FakeOutput, cfg PlantConfig) *Plant {
	return &Plant{
		cfg:      cfg,
		clock:    c,
		motor:    motor,
		temp:     cfg.StartTemp,
		humidity: cfg.Humidity,
		water:    float64(cfg.StartWater),
		lastMs:   c.Millis(),
		lowSince: -1,
	}
}

// Climate returns the plant's temperature/humidity probe.
func (p *Plant) Climate() ClimateProbe {
	return ClimateProbe{p}
}

// Level returns the plant's reservoir probe.
func (p *Plant) Level() LevelProbe {
	return LevelProbe{p}
}

// Temperature returns the current enclosure temperature without advancing the model.
func (p *Plant) Temperature() float64 {
	return p.temp
}

// Water returns the current reservoir level without advancing the model.
func (p *Plant) Water() uint16 {
	return uint16(p.water)
}

func (p *Plant) running() bool {
	return p.motor.Value() == 1
}

func (p *Plant) advance() {
	now := p.clock.Millis()
	dt := float64(now-p.lastMs) / 1000
	if dt <= 0 {
		return
	}
	p.lastMs = now

	if p.running() {
		p.temp -= p.cfg.CoolRate * dt
		p.humidity += p.cfg.HumidityRise * dt
		p.water -= p.cfg.DrainRate * dt
	} else {
		p.temp += p.cfg.WarmRate * dt
		p.humidity -= p.cfg.HumidityRise * dt
	}
	p.temp = mathx.Clamp(p.temp, p.cfg.MinTemp, p.cfg.MaxTemp)
	p.humidity = mathx.Clamp(p.humidity, p.cfg.Humidity, 95)
	p.water = mathx.Clamp(p.water, 0, 1023)

	if p.water >= float64(logic.WaterThreshold) {
		p.lowSince = -1
		return
	}
	if p.lowSince < 0 {
		p.lowSince = now
		return
	}
	if now-p.lowSince >= p.cfg.RefillAfter.Milliseconds() {
		p.water = float64(p.cfg.RefillLevel)
		p.lowSince = -1
		log.WithField("level", p.cfg.RefillLevel).Info("sim: reservoir refilled")
	}
}

// ClimateProbe reads the simulated enclosure.
type ClimateProbe struct{ p *Plant }

// Read returns the current temperature and humidity.
func (c ClimateProbe) Read() (logic.Reading, error) {
	p := c.p
	p.advance()
	p.reads++
	if p.cfg.FailEvery > 0 && p.reads%p.cfg.FailEvery == 0 {
		return logic.Reading{}, ErrProbe
	}
	return logic.Reading{Temperature: p.temp, Humidity: p.humidity}, nil
}

// LevelProbe reads the simulated reservoir.
type LevelProbe struct{ p *Plant }

// Read returns the current water level.
func (l LevelProbe) Read() (uint16, error) {
	l.p.advance()
	return uint16(l.p.water), nil
}
