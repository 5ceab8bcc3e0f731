package schan

import (
	"github.com/gordian-engine/slipstream"
)

// Event is one delivered signal from a [SinkChan]:
// either a value, or the terminal outcome of the sequence.
type Event[T any] struct {
	// The delivered value. Only meaningful when Terminal is false.
	Val T

	// The terminal error, nil for normal completion.
	// Only meaningful when Terminal is true.
	Err error

	// Whether this event ends the sequence.
	Terminal bool
}

// SinkChan is a [slipstream.Sink] that forwards every delivery
// into a channel, so a consumer can range over the sequence.
// The channel is closed right after the terminal event is sent.
//
// Deliveries block when the channel's buffer is full.
// Because the stream protocol is push-only, that backpressure
// propagates into whatever goroutine is delivering to the sink,
// so size the buffer for the consumer's pace.
type SinkChan[T any] struct {
	ch chan Event[T]
}

// NewSinkChan returns a SinkChan whose channel buffers up to
// buf events.
func NewSinkChan[T any](buf int) *SinkChan[T] {
	return &SinkChan[T]{ch: make(chan Event[T], buf)}
}

// Recv returns the channel carrying the sequence.
func (s *SinkChan[T]) Recv() <-chan Event[T] {
	return s.ch
}

// OnNext implements [slipstream.Sink].
func (s *SinkChan[T]) OnNext(v T) {
	s.ch <- Event[T]{Val: v}
}

// OnError implements [slipstream.Sink].
func (s *SinkChan[T]) OnError(err error) {
	s.ch <- Event[T]{Err: err, Terminal: true}
	close(s.ch)
}

// OnComplete implements [slipstream.Sink].
func (s *SinkChan[T]) OnComplete() {
	s.ch <- Event[T]{Terminal: true}
	close(s.ch)
}

var _ slipstream.Sink[int] = (*SinkChan[int])(nil)
