package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sweeney/swamp-cooler/internal/actuator"
	"github.com/sweeney/swamp-cooler/internal/clock"
	"github.com/sweeney/swamp-cooler/internal/eventlog"
	"github.com/sweeney/swamp-cooler/internal/gpio"
	"github.com/sweeney/swamp-cooler/internal/input"
	"github.com/sweeney/swamp-cooler/internal/logic"
	"github.com/sweeney/swamp-cooler/internal/sensor"
	"github.com/sweeney/swamp-cooler/internal/servo"
	"github.com/sweeney/swamp-cooler/internal/status"
)

// --- runLoop tests ---

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

type fakeController struct {
	steps     int
	snapshots int
	shutdowns int
	beats     int
}

func (c *fakeController) Step() logic.State {
	c.steps++
	return logic.StateIdle
}

func (c *fakeController) Snapshot() status.Snapshot {
	c.snapshots++
	return status.Snapshot{State: logic.StateIdle}
}

func (c *fakeController) Shutdown() {
	c.shutdowns++
}

// runRunLoop drives runLoop for nTicks and then delivers signal.
func runRunLoop(t *testing.T, c *fakeController, heartbeat time.Duration, now func() time.Time, nTicks int, signal os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(c, func(status.Snapshot) { c.beats++ }, heartbeat, now, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func TestRunLoopStepsOncePerTick(t *testing.T) {
	c := &fakeController{}
	clk := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	if err := runRunLoop(t, c, 0, clk, 5, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if c.steps != 5 {
		t.Errorf("expected 5 steps, got %d", c.steps)
	}
	if c.shutdowns != 1 {
		t.Errorf("expected 1 shutdown, got %d", c.shutdowns)
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	c := &fakeController{}
	clk := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 50*time.Millisecond)

	if err := runRunLoop(t, c, 0, clk, 0, syscall.SIGINT); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if c.steps != 0 {
		t.Errorf("expected no steps, got %d", c.steps)
	}
	if c.shutdowns != 1 {
		t.Errorf("expected 1 shutdown, got %d", c.shutdowns)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// now() is called once at start (t0) and once per tick: t1=5m, t2=10m, t3=15m, t4=20m.
	// The heartbeat fires at t3 and is not due again by t4.
	c := &fakeController{}
	clk := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 5*time.Minute)

	if err := runRunLoop(t, c, 15*time.Minute, clk, 4, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if c.beats != 1 || c.snapshots != 1 {
		t.Errorf("expected 1 heartbeat, got %d (%d snapshots)", c.beats, c.snapshots)
	}
}

func TestRunLoopHeartbeatDisabled(t *testing.T) {
	c := &fakeController{}
	clk := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Hour)

	if err := runRunLoop(t, c, 0, clk, 4, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if c.beats != 0 {
		t.Errorf("expected no heartbeat, got %d", c.beats)
	}
}

// --- heartbeat tests ---

func testDiagnostics(t *testing.T) (diagnostics, *gpio.FakeBoard) {
	t.Helper()
	board := gpio.NewFakeBoard()
	clk := clock.NewFake(0)
	return diagnostics{
		events:  eventlog.New(fixedNow, 2),
		sampler: sensor.NewSampler(clk, &sensor.FakeClimate{Fail: true}, &sensor.FakeLevel{Level: 300}, 0),
		buttons: input.New(board.Lines(), clk, input.DefaultConfig()),
		panel:   actuator.NewPanel(board.Lines(), &servo.Fake{}),
	}, board
}

func TestHeartbeatFields(t *testing.T) {
	d, _ := testDiagnostics(t)
	d.events.OnTransition(logic.Transition{From: logic.StateDisabled, To: logic.StateIdle})
	d.events.OnTransition(logic.Transition{From: logic.StateIdle, To: logic.StateRunning})
	d.events.OnTransition(logic.Transition{From: logic.StateRunning, To: logic.StateFault})
	d.sampler.ReadTemperatureHumidity()
	d.sampler.ReadTemperatureHumidity()
	if err := d.panel.SetMotor(true); err != nil {
		t.Fatalf("SetMotor: %v", err)
	}

	f := heartbeatFields(status.Snapshot{State: logic.StateFault}, d)

	recent, ok := f["recent"].([]string)
	if !ok || len(recent) != 2 || recent[0] != "IDLE->RUNNING" || recent[1] != "RUNNING->FAULT" {
		t.Errorf("recent: got %v", f["recent"])
	}
	if f["dropped"] != 1 {
		t.Errorf("dropped: got %v, want 1", f["dropped"])
	}
	if f["sensor_misses"] != 2 {
		t.Errorf("sensor_misses: got %v, want 2", f["sensor_misses"])
	}
	if f["disable_latched"] != false {
		t.Errorf("disable_latched: got %v, want false", f["disable_latched"])
	}
	if f["motor_written"] != true {
		t.Errorf("motor_written: got %v, want true", f["motor_written"])
	}
	if f["state"] != "FAULT" {
		t.Errorf("state: got %v", f["state"])
	}
}

func TestHeartbeatRecentIsBounded(t *testing.T) {
	d, _ := testDiagnostics(t)
	d.events = eventlog.New(fixedNow, eventlog.DefaultHistory)
	for i := 0; i < 10; i++ {
		d.events.OnTransition(logic.Transition{From: logic.StateIdle, To: logic.StateRunning})
	}

	f := heartbeatFields(status.Snapshot{}, d)
	if recent := f["recent"].([]string); len(recent) != heartbeatRecent {
		t.Errorf("expected %d recent transitions, got %d", heartbeatRecent, len(recent))
	}
	if f["dropped"] != 0 {
		t.Errorf("dropped: got %v, want 0", f["dropped"])
	}
}

func TestLogHeartbeatWarnsOnMotorMismatch(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	d, board := testDiagnostics(t)
	board.Motor.WriteError = errors.New("line busy")
	if err := d.panel.SetMotor(true); err == nil {
		t.Fatal("expected SetMotor to fail")
	}

	logHeartbeat(status.Snapshot{State: logic.StateRunning, MotorOn: true}, d)
	if e := hook.LastEntry(); e == nil || e.Level != log.WarnLevel {
		t.Fatalf("expected a warning, got %+v", e)
	}

	board.Motor.WriteError = nil
	if err := d.panel.SetMotor(true); err != nil {
		t.Fatalf("SetMotor: %v", err)
	}
	logHeartbeat(status.Snapshot{State: logic.StateRunning, MotorOn: true}, d)
	if e := hook.LastEntry(); e.Level != log.InfoLevel || e.Message != "heartbeat" {
		t.Errorf("expected an info heartbeat, got %v %q", e.Level, e.Message)
	}
}

// --- printStatus tests ---

func fakeHardware(climate *sensor.FakeClimate, level *sensor.FakeLevel) *hardware {
	return &hardware{
		vent:    &servo.Fake{},
		climate: climate,
		level:   level,
		close:   func() error { return nil },
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 7, 1, 14, 5, 9, 0, time.UTC)
}

func TestPrintStatus(t *testing.T) {
	climate := &sensor.FakeClimate{Reading: logic.Reading{Temperature: 23, Humidity: 40}}
	level := &sensor.FakeLevel{Level: 300}
	var buf bytes.Buffer

	if err := printStatus(&buf, fakeHardware(climate, level), clock.NewFake(0), fixedNow); err != nil {
		t.Fatalf("printStatus returned error: %v", err)
	}

	var got status.StatusJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	s := got.Status
	if s.State != "DISABLED" {
		t.Errorf("State: got %q, want DISABLED", s.State)
	}
	if !s.Ready {
		t.Error("expected ready after a sample")
	}
	if s.Environment == nil {
		t.Fatal("expected environment")
	}
	if s.Environment.Temperature != 23 || s.Environment.Humidity != 40 || s.Environment.WaterLevel != 300 {
		t.Errorf("Environment: got %+v", *s.Environment)
	}
	if s.VentAngle != logic.VentInitial {
		t.Errorf("VentAngle: got %d, want %d", s.VentAngle, logic.VentInitial)
	}
	if s.Timestamp != "2026-07-01T14:05:09Z" {
		t.Errorf("Timestamp: got %q", s.Timestamp)
	}
	if climate.Calls != 1 {
		t.Errorf("expected 1 climate read, got %d", climate.Calls)
	}
}

func TestPrintStatusRetriesClimate(t *testing.T) {
	climate := &sensor.FakeClimate{Fail: true}
	clk := clock.NewFake(0)
	var buf bytes.Buffer

	err := printStatus(&buf, fakeHardware(climate, &sensor.FakeLevel{Level: 300}), clk, fixedNow)
	if !errors.Is(err, sensor.ErrNoSample) {
		t.Fatalf("expected ErrNoSample, got %v", err)
	}
	if climate.Calls != printAttempts {
		t.Errorf("expected %d attempts, got %d", printAttempts, climate.Calls)
	}
	want := int64(printAttempts-1) * printRetryDelay.Milliseconds()
	if clk.Millis() != want {
		t.Errorf("expected %dms of retry delay, got %d", want, clk.Millis())
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestPrintStatusWaterError(t *testing.T) {
	climate := &sensor.FakeClimate{Reading: logic.Reading{Temperature: 23, Humidity: 40}}
	level := &sensor.FakeLevel{Err: errors.New("adc offline")}
	var buf bytes.Buffer

	if err := printStatus(&buf, fakeHardware(climate, level), clock.NewFake(0), fixedNow); err == nil {
		t.Fatal("expected error")
	}
}

func TestSimulatedHardware(t *testing.T) {
	clk := clock.NewFake(0)
	hw := simulatedHardware(clk)
	if hw.lines.Disable == nil || hw.lines.Motor == nil {
		t.Fatal("expected simulated lines")
	}

	var buf bytes.Buffer
	if err := printStatus(&buf, hw, clk, fixedNow); err != nil {
		t.Fatalf("printStatus on simulated hardware: %v", err)
	}
	if err := hw.close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
