// Package gpio provides the digital lines of the controller with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// InputLine reads one digital input. Value returns 1 when the line is active.
type InputLine interface {
	Value() (int, error)
}

// OutputLine drives one digital output.
type OutputLine interface {
	SetValue(value int) error
}

// Lines groups every digital line the controller uses.
type Lines struct {
	Disable  InputLine
	VentUp   InputLine
	VentDown InputLine

	// Indicators are indexed by logic.State: disabled, idle, running, fault.
	Indicators [4]OutputLine
	Motor      OutputLine
}

// Pins holds line offsets on the GPIO chip (BCM numbering on a Raspberry Pi).
type Pins struct {
	Disable  int
	VentUp   int
	VentDown int

	LEDDisabled int // yellow
	LEDIdle     int // green
	LEDRunning  int // blue
	LEDFault    int // red

	Motor int
}

func (p Pins) inputs() []int {
	return []int{p.Disable, p.VentUp, p.VentDown}
}

func (p Pins) outputs() []int {
	return []int{p.LEDDisabled, p.LEDIdle, p.LEDRunning, p.LEDFault, p.Motor}
}
