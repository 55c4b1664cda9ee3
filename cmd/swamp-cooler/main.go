// Command swamp-cooler runs the evaporative cooler controller on a Linux board.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/actuator"
	"github.com/sweeney/swamp-cooler/internal/clock"
	"github.com/sweeney/swamp-cooler/internal/config"
	"github.com/sweeney/swamp-cooler/internal/control"
	"github.com/sweeney/swamp-cooler/internal/display"
	"github.com/sweeney/swamp-cooler/internal/eventlog"
	"github.com/sweeney/swamp-cooler/internal/gpio"
	"github.com/sweeney/swamp-cooler/internal/iio"
	"github.com/sweeney/swamp-cooler/internal/input"
	"github.com/sweeney/swamp-cooler/internal/logic"
	"github.com/sweeney/swamp-cooler/internal/sensor"
	"github.com/sweeney/swamp-cooler/internal/servo"
	"github.com/sweeney/swamp-cooler/internal/sim"
	"github.com/sweeney/swamp-cooler/internal/status"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file with SWAMP_* settings (optional)")
	tick := flag.Duration("tick", 0, "Control loop period (0 uses SWAMP_TICK)")
	simulate := flag.Bool("simulate", false, "Run against simulated hardware")
	printState := flag.Bool("print-state", false, "Sample the sensors once, print status JSON and exit")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat log interval (0 to disable)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	log.SetLevel(cfg.Level())
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *tick > 0 {
		cfg.Tick = *tick
	}

	if err := run(cfg, *simulate, *printState, *heartbeat); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// hardware is everything the controller touches, real or simulated.
type hardware struct {
	lines   gpio.Lines
	vent    servo.Servo
	climate sensor.ClimateProbe
	level   sensor.LevelProbe
	close   func() error
}

func openHardware(cfg *config.Config) (*hardware, error) {
	board, err := gpio.NewRealBoard(cfg.GPIO.Chip, cfg.Pins())
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	pwm, err := servo.OpenSysfsPWM(cfg.Servo.PWMChip, cfg.Servo.PWMChannel, cfg.Pulse())
	if err != nil {
		board.Close()
		return nil, fmt.Errorf("init servo: %w", err)
	}
	return &hardware{
		lines:   board.Lines(),
		vent:    pwm,
		climate: iio.DHT{Dir: cfg.Sensor.ClimateDir},
		level: iio.ADC{
			Dir:     cfg.Sensor.WaterDir,
			Channel: cfg.Sensor.WaterChan,
			Shift:   cfg.Sensor.WaterShift,
		},
		close: func() error {
			return errors.Join(pwm.Close(), board.Close())
		},
	}, nil
}

func simulatedHardware(clk clock.Clock) *hardware {
	board := sim.NewBoard(clk, sim.DefaultScript())
	plant := sim.NewPlant(clk, board.Motor, sim.DefaultPlantConfig())
	return &hardware{
		lines:   board.Lines(),
		vent:    &servo.Fake{},
		climate: plant.Climate(),
		level:   plant.Level(),
		close:   board.Close,
	}
}

func run(cfg *config.Config, simulate, printState bool, heartbeat time.Duration) error {
	clk := clock.NewReal()

	var hw *hardware
	if simulate {
		hw = simulatedHardware(clk)
	} else {
		var err error
		if hw, err = openHardware(cfg); err != nil {
			return err
		}
	}
	defer func() {
		if err := hw.close(); err != nil {
			log.WithError(err).Warn("close hardware")
		}
	}()

	// Print state mode
	if printState {
		return printStatus(os.Stdout, hw, clk, time.Now)
	}

	diag := diagnostics{
		events:  eventlog.New(time.Now, eventlog.DefaultHistory),
		sampler: sensor.NewSampler(clk, hw.climate, hw.level, sensor.DefaultInterval),
		buttons: input.New(hw.lines, clk, cfg.Buttons()),
		panel:   actuator.NewPanel(hw.lines, hw.vent),
	}
	loop := control.New(control.Config{
		Sensors:   diag.sampler,
		Actuators: diag.panel,
		Inputs:    diag.buttons,
		Clock:     clk,
		Events:    diag.events,
		Display:   &display.Log{},
	})

	log.WithFields(log.Fields{
		"tick":      cfg.Tick,
		"heartbeat": heartbeat,
		"simulate":  simulate,
	}).Info("started")

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	beat := func(snap status.Snapshot) { logHeartbeat(snap, diag) }
	err := runLoop(loop, beat, heartbeat, time.Now, ticker.C, sigCh)
	if cerr := diag.panel.ClearIndicators(); cerr != nil {
		log.WithError(cerr).Warn("clear indicators")
	}
	return err
}

// controller is the part of control.Loop that runLoop drives.
type controller interface {
	Step() logic.State
	Snapshot() status.Snapshot
	Shutdown()
}

// runLoop steps c once per tick and hands a snapshot to beat every heartbeat.
func runLoop(c controller, beat func(status.Snapshot), heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastBeat := now()

	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			c.Shutdown()
			return nil

		case <-tick:
			c.Step()

			t := now()
			if heartbeat > 0 && t.Sub(lastBeat) >= heartbeat {
				lastBeat = t
				beat(c.Snapshot())
			}
		}
	}
}

// diagnostics are the collaborators the heartbeat reports on besides the loop.
type diagnostics struct {
	events  *eventlog.Log
	sampler *sensor.Sampler
	buttons *input.Buttons
	panel   *actuator.Panel
}

// heartbeatRecent is how many of the latest transitions a heartbeat lists.
const heartbeatRecent = 4

func heartbeatFields(snap status.Snapshot, d diagnostics) log.Fields {
	history := d.events.History()
	if len(history) > heartbeatRecent {
		history = history[len(history)-heartbeatRecent:]
	}
	recent := make([]string, 0, len(history))
	for _, e := range history {
		recent = append(recent, e.Transition.From.String()+"->"+e.Transition.To.String())
	}

	return log.Fields{
		"state":           snap.State.String(),
		"uptime":          snap.Uptime().Truncate(time.Second),
		"motor":           snap.MotorOn,
		"motor_written":   d.panel.MotorOn(),
		"vent":            snap.VentAngle,
		"temp_c":          snap.Env.Temperature,
		"water":           snap.Env.WaterLevel,
		"running":         snap.Counts.Running,
		"faults":          snap.Counts.Fault,
		"disabled":        snap.Counts.Disabled,
		"recent":          recent,
		"dropped":         d.events.Dropped(),
		"sensor_misses":   d.sampler.Misses(),
		"disable_latched": d.buttons.Latched(),
	}
}

func logHeartbeat(snap status.Snapshot, d diagnostics) {
	entry := log.WithFields(heartbeatFields(snap, d))
	if snap.MotorOn != d.panel.MotorOn() {
		entry.Warn("heartbeat: motor output disagrees with state")
		return
	}
	entry.Info("heartbeat")
}

// printAttempts bounds how often --print-state retries the climate probe,
// which fails on a corrupt bit stream now and then.
const printAttempts = 5

// printRetryDelay respects the DHT11's minimum time between reads.
const printRetryDelay = 2 * time.Second

// printStatus samples the sensors once and writes the startup status as JSON.
// No output is driven.
func printStatus(w io.Writer, hw *hardware, clk clock.Clock, now func() time.Time) error {
	var (
		r   logic.Reading
		err error
	)
	for i := 0; i < printAttempts; i++ {
		if i > 0 {
			clk.Sleep(printRetryDelay)
		}
		if r, err = hw.climate.Read(); err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i+1).Debug("climate read failed")
	}
	if err != nil {
		return fmt.Errorf("read climate: %w", err)
	}

	water, err := hw.level.Read()
	if err != nil {
		return fmt.Errorf("read water level: %w", err)
	}

	snap := status.Snapshot{
		State: logic.StateDisabled,
		Env: logic.Environment{
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
			WaterLevel:  water,
		},
		Sampled:   true,
		VentAngle: logic.VentInitial,
		NowMs:     clk.Millis(),
	}
	if _, err := fmt.Fprintf(w, "%s\n", status.FormatJSON(snap, logic.DefaultThresholds, now())); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}
