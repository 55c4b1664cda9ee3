// Package config loads the controller's deployment configuration from the
// environment. Values are resolved as:
//
//	OS environment (highest) -> dotenv file -> struct defaults (lowest)
//
// Decision thresholds are compiled in (see package logic) and cannot be set here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/gpio"
	"github.com/sweeney/swamp-cooler/internal/input"
	"github.com/sweeney/swamp-cooler/internal/servo"
)

// Prefix is prepended to every variable name. Nested groups add their own
// segment, e.g. SWAMP_GPIO_CHIP, SWAMP_BUTTON_RELEASE_TIMEOUT, SWAMP_SERVO_PWM_CHIP.
const Prefix = "SWAMP"

// Config is the controller configuration. It is read once at startup.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`

	// Tick is the control loop period; vent trim moves one step per tick while held.
	Tick time.Duration `envconfig:"TICK" default:"50ms" validate:"gte=1ms,lte=1s"`

	GPIO   GPIOConfig
	Button ButtonConfig
	Sensor SensorConfig
	Servo  ServoConfig
}

// GPIOConfig locates the digital lines.
type GPIOConfig struct {
	Chip string `envconfig:"CHIP" default:"gpiochip0" validate:"required"`

	PinDisable  int `envconfig:"PIN_DISABLE" default:"22" validate:"gte=0,lte=53"`
	PinVentUp   int `envconfig:"PIN_VENT_UP" default:"23" validate:"gte=0,lte=53"`
	PinVentDown int `envconfig:"PIN_VENT_DOWN" default:"24" validate:"gte=0,lte=53"`

	PinLEDDisabled int `envconfig:"PIN_LED_DISABLED" default:"5" validate:"gte=0,lte=53"`
	PinLEDIdle     int `envconfig:"PIN_LED_IDLE" default:"6" validate:"gte=0,lte=53"`
	PinLEDRunning  int `envconfig:"PIN_LED_RUNNING" default:"13" validate:"gte=0,lte=53"`
	PinLEDFault    int `envconfig:"PIN_LED_FAULT" default:"19" validate:"gte=0,lte=53"`

	PinMotor int `envconfig:"PIN_MOTOR" default:"17" validate:"gte=0,lte=53"`
}

// ButtonConfig tunes the Disable button release wait.
type ButtonConfig struct {
	PollInterval   time.Duration `envconfig:"POLL" default:"5ms" validate:"gte=1ms"`
	Settle         time.Duration `envconfig:"SETTLE" default:"20ms" validate:"gte=0"`
	ReleaseTimeout time.Duration `envconfig:"RELEASE_TIMEOUT" default:"5s" validate:"gte=0"`
}

// SensorConfig locates the kernel IIO sensors.
type SensorConfig struct {
	ClimateDir string `envconfig:"CLIMATE_DIR" default:"/sys/bus/iio/devices/iio:device0" validate:"required"`
	WaterDir   string `envconfig:"WATER_DIR" default:"/sys/bus/iio/devices/iio:device1" validate:"required"`
	WaterChan  int    `envconfig:"WATER_CHANNEL" default:"0" validate:"gte=0,lte=7"`
	WaterShift uint   `envconfig:"WATER_SHIFT" default:"0" validate:"lte=15"`
}

// ServoConfig locates the vent servo PWM channel.
type ServoConfig struct {
	PWMChip    string        `envconfig:"PWM_CHIP" default:"/sys/class/pwm/pwmchip0" validate:"required"`
	PWMChannel int           `envconfig:"PWM_CHANNEL" default:"0" validate:"gte=0"`
	PulseMin   time.Duration `envconfig:"PULSE_MIN" default:"500us" validate:"gt=0"`
	PulseMax   time.Duration `envconfig:"PULSE_MAX" default:"2500us" validate:"gtfield=PulseMin"`
}

// ErrorType classifies configuration failures.
type ErrorType string

const (
	ErrEnvFile    ErrorType = "ENV_FILE"
	ErrParsing    ErrorType = "PARSING"
	ErrValidation ErrorType = "VALIDATION"
)

// Error is returned by Load.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Load reads envFile (if non-empty) into the environment without overriding
// variables already set, then populates and validates a Config.
// A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
			log.WithField("file", envFile).Debug("config: env file not found, using environment only")
		} else if err := godotenv.Load(envFile); err != nil {
			return nil, &Error{Type: ErrEnvFile, Message: "failed to load " + envFile, Err: err}
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, &Error{Type: ErrParsing, Message: "failed to process environment configuration", Err: err}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, &Error{Type: ErrValidation, Message: "invalid configuration", Err: err}
	}
	if err := cfg.checkPins(); err != nil {
		return nil, &Error{Type: ErrValidation, Message: "invalid pin assignment", Err: err}
	}
	return &cfg, nil
}

// Pins returns the GPIO offsets as the gpio package expects them.
func (c *Config) Pins() gpio.Pins {
	return gpio.Pins{
		Disable:     c.GPIO.PinDisable,
		VentUp:      c.GPIO.PinVentUp,
		VentDown:    c.GPIO.PinVentDown,
		LEDDisabled: c.GPIO.PinLEDDisabled,
		LEDIdle:     c.GPIO.PinLEDIdle,
		LEDRunning:  c.GPIO.PinLEDRunning,
		LEDFault:    c.GPIO.PinLEDFault,
		Motor:       c.GPIO.PinMotor,
	}
}

// Buttons returns the release-wait tuning for package input.
func (c *Config) Buttons() input.Config {
	return input.Config{
		PollInterval:   c.Button.PollInterval,
		Settle:         c.Button.Settle,
		ReleaseTimeout: c.Button.ReleaseTimeout,
	}
}

// Pulse returns the servo pulse range.
func (c *Config) Pulse() servo.PulseRange {
	return servo.PulseRange{Min: c.Servo.PulseMin, Max: c.Servo.PulseMax}
}

// Level parses LogLevel.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func (c *Config) checkPins() error {
	p := c.Pins()
	seen := map[int]string{}
	for name, pin := range map[string]int{
		"disable": p.Disable, "vent-up": p.VentUp, "vent-down": p.VentDown,
		"led-disabled": p.LEDDisabled, "led-idle": p.LEDIdle, "led-running": p.LEDRunning,
		"led-fault": p.LEDFault, "motor": p.Motor,
	} {
		if other, dup := seen[pin]; dup {
			return fmt.Errorf("pin %d used by both %s and %s", pin, other, name)
		}
		seen[pin] = name
	}
	return nil
}
