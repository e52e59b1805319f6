package button

// FakeSource is a test double that delivers scripted press events.
type FakeSource struct {
	presses chan Press

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeSource creates a FakeSource with a buffered event channel.
func NewFakeSource() *FakeSource {
	return &FakeSource{presses: make(chan Press, 8)}
}

// Press injects a press event.
func (f *FakeSource) Press(b Button, long bool) {
	f.presses <- Press{Button: b, Long: long}
}

// Presses returns the channel press events are delivered on.
func (f *FakeSource) Presses() <-chan Press {
	return f.presses
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
