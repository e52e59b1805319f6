package command

import (
	"log/slog"
	"sync"
)

// Queue is a bounded FIFO of pending commands. Enqueue may be called from
// transport callbacks; Drain is called by the control loop once per tick.
// When the queue is full the newest command is dropped and logged — a stuck
// loop should not accumulate unbounded input.
type Queue struct {
	mu     sync.Mutex
	buf    []Command
	max    int
	logger *slog.Logger
}

// NewQueue creates a queue holding at most max commands.
func NewQueue(max int, logger *slog.Logger) *Queue {
	return &Queue{
		max:    max,
		logger: logger.With(slog.String("component", "commands")),
	}
}

// Enqueue adds a command for the next tick. Returns false if the command was
// dropped because the queue is full.
func (q *Queue) Enqueue(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buf) >= q.max {
		q.logger.Warn("queue full, dropping command", slog.String("kind", string(c.Kind)))
		return false
	}
	q.buf = append(q.buf, c)
	return true
}

// Drain removes and returns all pending commands in arrival order.
func (q *Queue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buf) == 0 {
		return nil
	}
	out := q.buf
	q.buf = nil
	return out
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
