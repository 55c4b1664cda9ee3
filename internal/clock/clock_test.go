package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeSleepAdvances(t *testing.T) {
	f := NewFake(100)
	var seen []int64
	f.OnSleep = func(now int64) { seen = append(seen, now) }

	f.Sleep(5 * time.Millisecond)
	f.Sleep(time.Microsecond)
	f.Advance(10)

	assert.Equal(t, int64(116), f.Millis())
	assert.Equal(t, []int64{105, 106}, seen)
}

func TestFakeSetNeverGoesBackwards(t *testing.T) {
	f := NewFake(50)
	f.Set(40)
	assert.Equal(t, int64(50), f.Millis())
	f.Set(4050)
	assert.Equal(t, int64(4050), f.Millis())
}

func TestRealIsMonotonic(t *testing.T) {
	r := NewReal()
	a := r.Millis()
	r.Sleep(2 * time.Millisecond)
	b := r.Millis()
	assert.GreaterOrEqual(t, b, a+2)
}
