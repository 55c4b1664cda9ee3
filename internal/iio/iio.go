// Package iio reads sensors exposed by the Linux industrial I/O subsystem
// under /sys/bus/iio/devices.
package iio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sweeney/swamp-cooler/internal/logic"
)

// DHT reads a DHT11/DHT22 bound to the kernel dht11 driver.
// The driver reports millidegrees and milli-percent and fails with EIO
// whenever the sensor's bit stream is corrupt, which is common.
type DHT struct {
	Dir string
}

// Read returns one temperature/humidity sample.
func (d DHT) Read() (logic.Reading, error) {
	temp, err := readInt(filepath.Join(d.Dir, "in_temp_input"))
	if err != nil {
		return logic.Reading{}, err
	}
	hum, err := readInt(filepath.Join(d.Dir, "in_humidityrelative_input"))
	if err != nil {
		return logic.Reading{}, err
	}
	return logic.Reading{
		Temperature: float64(temp) / 1000,
		Humidity:    float64(hum) / 1000,
	}, nil
}

// ADC reads a raw channel of an IIO analog-to-digital converter.
type ADC struct {
	Dir     string
	Channel int
	// Shift drops low bits so the level lands in the 10-bit range the
	// water threshold is expressed in (e.g. 6 for a 16-bit converter).
	Shift uint
}

// Read returns the raw level, scaled by Shift. Readings outside the uint16
// range clamp to its bounds.
func (a ADC) Read() (uint16, error) {
	v, err := readInt(filepath.Join(a.Dir, fmt.Sprintf("in_voltage%d_raw", a.Channel)))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0
	}
	v >>= a.Shift
	if v > math.MaxUint16 {
		v = math.MaxUint16
	}
	return uint16(v), nil
}

func readInt(path string) (int64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return v, nil
}
