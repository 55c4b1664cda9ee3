package gpio

import "errors"

// FakeInput is a test double that returns scripted line values.
type FakeInput struct {
	// Samples contains scripted values to return.
	// Each call to Value() consumes the next sample.
	Samples []int

	// index tracks current position in Samples
	index int

	// Reads counts calls to Value.
	Reads int

	// ReadError, if set, will be returned by Value()
	ReadError error
}

// NewFakeInput creates a FakeInput with the given samples.
func NewFakeInput(samples ...int) *FakeInput {
	return &FakeInput{Samples: samples}
}

// Value returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeInput) Value() (int, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Set replaces the script with a single held value.
func (f *FakeInput) Set(v int) {
	f.Samples = []int{v}
	f.index = 0
}

// Reset resets the input to the beginning of samples.
func (f *FakeInput) Reset() {
	f.index = 0
	f.Reads = 0
}

// FakeOutput records values written to an output line.
type FakeOutput struct {
	// Writes contains every value written, in order.
	Writes []int

	// WriteError, if set, will be returned by SetValue.
	WriteError error
}

// SetValue records v.
func (f *FakeOutput) SetValue(v int) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, v)
	return nil
}

// Value returns the last written value, or 0 if nothing was written.
func (f *FakeOutput) Value() int {
	if len(f.Writes) == 0 {
		return 0
	}
	return f.Writes[len(f.Writes)-1]
}

// FakeBoard is a complete set of fake lines.
type FakeBoard struct {
	Disable, VentUp, VentDown *FakeInput
	Indicators                [4]*FakeOutput
	Motor                     *FakeOutput
	Closed                    bool
}

// NewFakeBoard creates a board with every button released.
func NewFakeBoard() *FakeBoard {
	b := &FakeBoard{
		Disable:  NewFakeInput(0),
		VentUp:   NewFakeInput(0),
		VentDown: NewFakeInput(0),
		Motor:    &FakeOutput{},
	}
	for i := range b.Indicators {
		b.Indicators[i] = &FakeOutput{}
	}
	return b
}

// Lines returns the fake lines in controller order.
func (b *FakeBoard) Lines() Lines {
	return Lines{
		Disable:  b.Disable,
		VentUp:   b.VentUp,
		VentDown: b.VentDown,
		Indicators: [4]OutputLine{
			b.Indicators[0], b.Indicators[1], b.Indicators[2], b.Indicators[3],
		},
		Motor: b.Motor,
	}
}

// Lit returns the indexes of indicators currently driven high.
func (b *FakeBoard) Lit() []int {
	var lit []int
	for i, o := range b.Indicators {
		if o.Value() == 1 {
			lit = append(lit, i)
		}
	}
	return lit
}

// Close marks the board as closed.
func (b *FakeBoard) Close() error {
	b.Closed = true
	return nil
}
