package feed

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when the render thread has fallen behind
var ErrQueueFull = errors.New("command queue full")

// Queue hands validated commands from network goroutines to the render thread
type Queue struct {
	ch  chan Command
	log zerolog.Logger
}

func NewQueue(size int, log zerolog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		ch:  make(chan Command, size),
		log: log.With().Str("component", "feed").Logger(),
	}
}

// Push enqueues cmd without blocking
func (q *Queue) Push(cmd Command) error {
	select {
	case q.ch <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Len is the number of queued commands
func (q *Queue) Len() int { return len(q.ch) }

// Drain applies every command queued so far, in arrival order. It returns
// the number applied and the joined errors of those that failed.
func (q *Queue) Drain(s Scene) (int, error) {
	var errs []error
	applied := 0
	for pending := len(q.ch); pending > 0; pending-- {
		cmd := <-q.ch
		if err := cmd.Apply(s); err != nil {
			q.log.Warn().Err(err).Str("type", cmd.Type).Msg("command rejected")
			errs = append(errs, err)
			continue
		}
		applied++
	}
	return applied, errors.Join(errs...)
}
