// Package button provides physical button input with hardware abstraction.
// The real implementation uses Linux GPIO character device edge events.
// The fake implementation allows testing without hardware.
package button

import "time"

// Button identifies a physical button on the front panel.
type Button string

const (
	// ButtonMode cycles the operating mode on a short press.
	ButtonMode Button = "mode"

	// ButtonTarget adjusts the target temperature: short press raises it,
	// long press lowers it.
	ButtonTarget Button = "target"
)

// Press is a debounced button press event. Long is true when the button
// was held past the long-press threshold before release.
type Press struct {
	Button Button
	Long   bool
}

// Source delivers press events from physical buttons.
type Source interface {
	// Presses returns the channel press events are delivered on.
	Presses() <-chan Press

	// Close releases button resources.
	Close() error
}

// edgeTracker turns falling/rising edge timestamps for a single line into
// press events. Buttons are wired active-low, so a falling edge marks the
// press and the rising edge the release.
type edgeTracker struct {
	button    Button
	longPress time.Duration

	pressedAt time.Duration
	down      bool
}

// edge processes one edge event. The timestamp is monotonic (time since
// boot, as reported by the kernel). It returns a Press on release; a rising
// edge without a preceding fall is spurious and produces nothing.
func (t *edgeTracker) edge(falling bool, ts time.Duration) (Press, bool) {
	if falling {
		t.pressedAt = ts
		t.down = true
		return Press{}, false
	}
	if !t.down {
		return Press{}, false
	}
	t.down = false
	held := ts - t.pressedAt
	return Press{Button: t.button, Long: held >= t.longPress}, true
}
