package sensor

import "errors"

// FakeReader is a test double that returns scripted readings. A nil entry in
// Samples simulates a read fault.
type FakeReader struct {
	// Samples contains scripted readings. Each call to Read consumes the
	// next sample; when exhausted, the last sample repeats.
	Samples []*Reading

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...*Reading) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample, or an error for a nil sample.
func (f *FakeReader) Read() (Reading, error) {
	if len(f.Samples) == 0 {
		return Reading{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	if sample == nil {
		return Reading{}, errors.New("simulated sensor fault")
	}
	return *sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
