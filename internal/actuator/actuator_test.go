package actuator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/swamp-cooler/internal/gpio"
	"github.com/sweeney/swamp-cooler/internal/logic"
	"github.com/sweeney/swamp-cooler/internal/servo"
)

func newTestPanel() (*Panel, *gpio.FakeBoard, *servo.Fake) {
	board := gpio.NewFakeBoard()
	vent := &servo.Fake{}
	return NewPanel(board.Lines(), vent), board, vent
}

func TestSetIndicatorIsExclusive(t *testing.T) {
	p, board, _ := newTestPanel()

	for _, s := range []logic.State{logic.StateDisabled, logic.StateIdle, logic.StateRunning, logic.StateFault, logic.StateIdle} {
		require.NoError(t, p.SetIndicator(s))
		assert.Equal(t, []int{int(s)}, board.Lit(), "after %s", s)
	}
}

func TestSetIndicatorClearsBeforeAsserting(t *testing.T) {
	p, board, _ := newTestPanel()
	require.NoError(t, p.SetIndicator(logic.StateIdle))
	require.NoError(t, p.SetIndicator(logic.StateRunning))

	assert.Equal(t, []int{1, 0}, board.Indicators[logic.StateIdle].Writes)
	assert.Equal(t, []int{1}, board.Indicators[logic.StateRunning].Writes)
}

func TestSetIndicatorSameStateWritesNothing(t *testing.T) {
	p, board, _ := newTestPanel()
	require.NoError(t, p.SetIndicator(logic.StateFault))
	require.NoError(t, p.SetIndicator(logic.StateFault))
	assert.Equal(t, []int{1}, board.Indicators[logic.StateFault].Writes)
}

func TestSetIndicatorUnknownClears(t *testing.T) {
	p, board, _ := newTestPanel()
	require.NoError(t, p.SetIndicator(logic.StateRunning))
	require.NoError(t, p.SetIndicator(logic.State(7)))
	assert.Empty(t, board.Lit())
}

func TestSetIndicatorError(t *testing.T) {
	p, board, _ := newTestPanel()
	board.Indicators[logic.StateIdle].WriteError = errors.New("line busy")
	assert.ErrorContains(t, p.SetIndicator(logic.StateIdle), "set IDLE indicator")
}

func TestClearIndicators(t *testing.T) {
	p, board, _ := newTestPanel()
	require.NoError(t, p.SetIndicator(logic.StateIdle))
	require.NoError(t, p.ClearIndicators())
	assert.Empty(t, board.Lit())

	require.NoError(t, p.SetIndicator(logic.StateIdle))
	assert.Equal(t, []int{int(logic.StateIdle)}, board.Lit())
}

func TestSetMotorIdempotent(t *testing.T) {
	p, board, _ := newTestPanel()

	require.NoError(t, p.SetMotor(false))
	require.NoError(t, p.SetMotor(true))
	require.NoError(t, p.SetMotor(true))
	require.NoError(t, p.SetMotor(false))
	require.NoError(t, p.SetMotor(false))

	assert.Equal(t, []int{0, 1, 0}, board.Motor.Writes)
	assert.False(t, p.MotorOn())
}

func TestSetVentAngleClamps(t *testing.T) {
	p, _, vent := newTestPanel()

	require.NoError(t, p.SetVentAngle(90))
	require.NoError(t, p.SetVentAngle(200))
	require.NoError(t, p.SetVentAngle(130))
	require.NoError(t, p.SetVentAngle(0))

	assert.Equal(t, []int{90, 120, 60}, vent.Angles)
}

func TestSetVentAngleError(t *testing.T) {
	p, _, vent := newTestPanel()
	vent.SetError = errors.New("pwm gone")
	assert.Error(t, p.SetVentAngle(100))

	vent.SetError = nil
	require.NoError(t, p.SetVentAngle(100))
	assert.Equal(t, []int{100}, vent.Angles, "failed move is retried")
}
