package schan

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gordian-engine/slipstream"
)

var _ slipstream.Source[int] = (*ChannelSource[int])(nil)

// ChannelSource adapts a receive channel to a [slipstream.Source].
//
// The source is one-shot: it owns a single pump goroutine feeding a
// single sink, which is the shape the sreplay cache expects from its
// upstream. Subscribe panics if called twice.
//
// The sink sees one terminal signal at most:
// OnComplete when ch is closed,
// or OnError with the context's cause when ctx is canceled.
// Disposing the returned handle stops the pump without any
// terminal signal.
type ChannelSource[T any] struct {
	log *slog.Logger

	ctx context.Context
	ch  <-chan T

	subscribed atomic.Bool

	done chan struct{}
}

// NewChannelSource returns a ChannelSource reading from ch.
// Nothing is read until [*ChannelSource.Subscribe] is called.
func NewChannelSource[T any](ctx context.Context, log *slog.Logger, ch <-chan T) *ChannelSource[T] {
	return &ChannelSource[T]{
		log:  log,
		ctx:  ctx,
		ch:   ch,
		done: make(chan struct{}),
	}
}

// Subscribe implements [slipstream.Source].
// It starts the pump goroutine delivering to sink.
func (s *ChannelSource[T]) Subscribe(sink slipstream.Sink[T]) slipstream.Disposable {
	if !s.subscribed.CompareAndSwap(false, true) {
		panic("Subscribe called more than once on the same ChannelSource")
	}

	d := newPumpDisposable()
	go s.pump(sink, d)
	return d
}

// Done is closed when the pump goroutine has stopped,
// for any of the three stop reasons.
// If Subscribe is never called, Done never closes.
func (s *ChannelSource[T]) Done() <-chan struct{} {
	return s.done
}

func (s *ChannelSource[T]) pump(sink slipstream.Sink[T], d *pumpDisposable) {
	defer close(s.done)

	for {
		if d.IsDisposed() {
			s.log.Debug("Stopping due to disposal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.log.Debug("Stopping due to context cancellation", "cause", context.Cause(s.ctx))
			if !d.IsDisposed() {
				sink.OnError(context.Cause(s.ctx))
			}
			return

		case <-d.disposed:
			s.log.Debug("Stopping due to disposal")
			return

		case v, ok := <-s.ch:
			if !ok {
				s.log.Debug("Stopping due to closed channel")
				if !d.IsDisposed() {
					sink.OnComplete()
				}
				return
			}
			sink.OnNext(v)
		}
	}
}

// pumpDisposable stops a ChannelSource's pump goroutine.
type pumpDisposable struct {
	once     atomic.Bool
	disposed chan struct{}
}

func newPumpDisposable() *pumpDisposable {
	return &pumpDisposable{disposed: make(chan struct{})}
}

func (d *pumpDisposable) Dispose() {
	if d.once.CompareAndSwap(false, true) {
		close(d.disposed)
	}
}

func (d *pumpDisposable) IsDisposed() bool {
	select {
	case <-d.disposed:
		return true
	default:
		return false
	}
}
