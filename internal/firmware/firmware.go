//go:build tinygo

// Package firmware binds the controller to microcontroller peripherals via
// TinyGo drivers: a DHT11, an analog water sensor, a hobby servo, a 16x2
// HD44780 character display and a DS3231 real-time clock.
package firmware

import (
	"errors"
	"machine"
	"time"

	"tinygo.org/x/drivers/dht"
	"tinygo.org/x/drivers/ds3231"
	"tinygo.org/x/drivers/hd44780"
	"tinygo.org/x/drivers/servo"

	"github.com/sweeney/swamp-cooler/internal/gpio"
	"github.com/sweeney/swamp-cooler/internal/logic"
	"github.com/sweeney/swamp-cooler/internal/status"
)

// Config is the board wiring.
type Config struct {
	Disable, VentUp, VentDown machine.Pin
	// Indicators are in state order: disabled, idle, running, fault.
	Indicators [4]machine.Pin
	Motor      machine.Pin

	DHT   machine.Pin
	Water machine.Pin // ADC capable

	ServoPWM servo.PWM
	Servo    machine.Pin

	// LCD is driven in 4-bit mode, RW tied to ground.
	LCDData [4]machine.Pin
	LCDE    machine.Pin
	LCDRS   machine.Pin

	// I2C is the bus of the DS3231, already configured. Nil runs without a clock.
	I2C *machine.I2C
}

// Board holds the opened peripherals.
type Board struct {
	lines   gpio.Lines
	climate Climate
	water   Water
	vent    servo.Servo
	lcd     *LCD
	rtc     *RTC
}

// Open configures every peripheral in cfg.
func Open(cfg Config) (*Board, error) {
	b := &Board{}

	for _, p := range []machine.Pin{cfg.Disable, cfg.VentUp, cfg.VentDown} {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	}
	b.lines.Disable = InputPin{cfg.Disable}
	b.lines.VentUp = InputPin{cfg.VentUp}
	b.lines.VentDown = InputPin{cfg.VentDown}

	for i, p := range cfg.Indicators {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
		b.lines.Indicators[i] = OutputPin{p}
	}
	cfg.Motor.Configure(machine.PinConfig{Mode: machine.PinOutput})
	cfg.Motor.Low()
	b.lines.Motor = OutputPin{cfg.Motor}

	b.climate = Climate{dev: dht.New(cfg.DHT, dht.DHT11)}

	machine.InitADC()
	adc := machine.ADC{Pin: cfg.Water}
	adc.Configure(machine.ADCConfig{})
	b.water = Water{adc: adc}

	vent, err := servo.New(cfg.ServoPWM, cfg.Servo)
	if err != nil {
		return nil, errors.New("init servo: " + err.Error())
	}
	b.vent = vent

	dev, err := hd44780.NewGPIO4Bit(cfg.LCDData[:], cfg.LCDE, cfg.LCDRS, machine.NoPin)
	if err != nil {
		return nil, errors.New("init lcd: " + err.Error())
	}
	if err := dev.Configure(hd44780.Config{Width: 16, Height: 2}); err != nil {
		return nil, errors.New("configure lcd: " + err.Error())
	}
	b.lcd = &LCD{dev: dev}

	if cfg.I2C != nil {
		rtc := ds3231.New(cfg.I2C)
		rtc.Configure()
		b.rtc = &RTC{dev: rtc}
	}
	return b, nil
}

// Lines returns the digital lines.
func (b *Board) Lines() gpio.Lines { return b.lines }

// Climate returns the DHT11 probe.
func (b *Board) Climate() Climate { return b.climate }

// Water returns the reservoir probe.
func (b *Board) Water() Water { return b.water }

// Vent returns the vent servo.
func (b *Board) Vent() servo.Servo { return b.vent }

// Display returns the character display.
func (b *Board) Display() *LCD { return b.lcd }

// Now returns the RTC time, or the zero time when the board has no RTC or it
// cannot be read.
func (b *Board) Now() time.Time {
	if b.rtc == nil {
		return time.Time{}
	}
	return b.rtc.Now()
}

// InputPin adapts a machine pin to gpio.InputLine.
type InputPin struct{ machine.Pin }

// Value returns 1 while the pin is high.
func (p InputPin) Value() (int, error) {
	if p.Get() {
		return 1, nil
	}
	return 0, nil
}

// OutputPin adapts a machine pin to gpio.OutputLine.
type OutputPin struct{ machine.Pin }

// SetValue drives the pin high for any non-zero v.
func (p OutputPin) SetValue(v int) error {
	p.Set(v != 0)
	return nil
}

// Climate reads a DHT11.
type Climate struct {
	dev dht.Device
}

// Read takes a fresh measurement. The driver reports tenths of a degree and
// tenths of a percent.
func (c Climate) Read() (logic.Reading, error) {
	if err := c.dev.ReadMeasurements(); err != nil {
		return logic.Reading{}, err
	}
	temp, hum, err := c.dev.Measurements()
	if err != nil {
		return logic.Reading{}, err
	}
	return logic.Reading{
		Temperature: float64(temp) / 10,
		Humidity:    float64(hum) / 10,
	}, nil
}

// Water reads the analog water-level sensor.
type Water struct {
	adc machine.ADC
}

// Read returns the level in 10-bit units; the ADC reports 16-bit values.
func (w Water) Read() (uint16, error) {
	return w.adc.Get() >> 6, nil
}

// LCD shows status lines on a 16x2 HD44780.
type LCD struct {
	dev hd44780.Device
}

// Show clears the display and writes both lines.
func (l *LCD) Show(lines status.Lines) error {
	l.dev.ClearDisplay()
	for row, text := range lines {
		if text == "" {
			continue
		}
		l.dev.SetCursor(0, uint8(row))
		if _, err := l.dev.Write([]byte(text)); err != nil {
			return err
		}
		if err := l.dev.Display(); err != nil {
			return err
		}
	}
	return nil
}

// RTC reads wall-clock time from a DS3231.
type RTC struct {
	dev ds3231.Device
}

// Now returns the RTC time, or the zero time on a read failure.
func (r *RTC) Now() time.Time {
	if !r.dev.IsTimeValid() {
		return time.Time{}
	}
	t, err := r.dev.ReadTime()
	if err != nil {
		return time.Time{}
	}
	return t
}
