//go:build linux

package button

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const debounce = 20 * time.Millisecond

// RealSource reads button presses from actual hardware using Linux GPIO
// character device edge events.
type RealSource struct {
	chip       *gpiocdev.Chip
	modeLine   *gpiocdev.Line
	targetLine *gpiocdev.Line
	presses    chan Press
}

// NewRealSource opens the given GPIO chip and requests the mode and target
// button lines. Buttons are expected to pull the line to ground when
// pressed, so lines are requested with an internal pull-up.
func NewRealSource(chipName string, modePin, targetPin int, longPress time.Duration) (*RealSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &RealSource{
		chip:    chip,
		presses: make(chan Press, 8),
	}

	s.modeLine, err = s.requestLine(modePin, ButtonMode, longPress)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request mode pin %d: %w", modePin, err)
	}

	s.targetLine, err = s.requestLine(targetPin, ButtonTarget, longPress)
	if err != nil {
		s.modeLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request target pin %d: %w", targetPin, err)
	}

	return s, nil
}

func (s *RealSource) requestLine(pin int, b Button, longPress time.Duration) (*gpiocdev.Line, error) {
	tracker := &edgeTracker{button: b, longPress: longPress}
	return s.chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			falling := evt.Type == gpiocdev.LineEventFallingEdge
			press, ok := tracker.edge(falling, evt.Timestamp)
			if !ok {
				return
			}
			// Drop the event rather than block the kernel event goroutine.
			select {
			case s.presses <- press:
			default:
			}
		}),
	)
}

// Presses returns the channel press events are delivered on.
func (s *RealSource) Presses() <-chan Press {
	return s.presses
}

// Close releases GPIO resources.
func (s *RealSource) Close() error {
	var errs []error
	if s.modeLine != nil {
		if err := s.modeLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mode line: %w", err))
		}
	}
	if s.targetLine != nil {
		if err := s.targetLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close target line: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
