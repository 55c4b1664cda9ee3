//go:build tinygo && rp2040

// Command swamp-firmware runs the controller on a Raspberry Pi Pico.
package main

import (
	"machine"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/actuator"
	"github.com/sweeney/swamp-cooler/internal/clock"
	"github.com/sweeney/swamp-cooler/internal/control"
	"github.com/sweeney/swamp-cooler/internal/eventlog"
	"github.com/sweeney/swamp-cooler/internal/firmware"
	"github.com/sweeney/swamp-cooler/internal/input"
	"github.com/sweeney/swamp-cooler/internal/sensor"
)

const tick = 50 * time.Millisecond

func main() {
	log.SetFormatter(&log.TextFormatter{DisableColors: true, DisableTimestamp: true})

	machine.I2C0.Configure(machine.I2CConfig{SDA: machine.GP4, SCL: machine.GP5})

	board, err := firmware.Open(firmware.Config{
		Disable:    machine.GP10,
		VentUp:     machine.GP11,
		VentDown:   machine.GP12,
		Indicators: [4]machine.Pin{machine.GP13, machine.GP14, machine.GP15, machine.GP16},
		Motor:      machine.GP17,
		DHT:        machine.GP18,
		Water:      machine.ADC0,
		ServoPWM:   machine.PWM3,
		Servo:      machine.GP22,
		LCDData:    [4]machine.Pin{machine.GP6, machine.GP7, machine.GP8, machine.GP9},
		LCDE:       machine.GP20,
		LCDRS:      machine.GP21,
		I2C:        machine.I2C0,
	})
	if err != nil {
		panic(err)
	}

	clk := clock.NewReal()
	lines := board.Lines()
	loop := control.New(control.Config{
		Sensors:   sensor.NewSampler(clk, board.Climate(), board.Water(), sensor.DefaultInterval),
		Actuators: actuator.NewPanel(lines, board.Vent()),
		Inputs:    input.New(lines, clk, input.DefaultConfig()),
		Clock:     clk,
		Events:    eventlog.New(board.Now, 8),
		Display:   board.Display(),
	})

	for {
		loop.Step()
		time.Sleep(tick)
	}
}
