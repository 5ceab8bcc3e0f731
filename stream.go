package slipstream

// Sink receives a pushed sequence of values.
//
// Callers must honor the sequential protocol:
// zero or more OnNext calls, followed by at most one call
// to either OnError or OnComplete, and nothing after that.
// Calls must not be made concurrently;
// a source delivering from multiple goroutines
// must serialize before reaching the sink.
type Sink[T any] interface {
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Source is a push-based producer of values.
type Source[T any] interface {
	// Subscribe attaches sink to the source,
	// so that the sink begins observing the source's sequence.
	//
	// The returned handle detaches the sink again.
	// Detaching takes effect promptly, not instantly:
	// a delivery already in flight on another goroutine
	// may still reach the sink after Dispose returns.
	Subscribe(sink Sink[T]) Disposable
}

// Disposable is the detach handle returned from [Source.Subscribe].
type Disposable interface {
	// Dispose detaches the sink from its source.
	// It is safe to call from any goroutine, and idempotent.
	Dispose()

	// IsDisposed reports whether Dispose has been called.
	IsDisposed() bool
}

// SinkFuncs adapts plain functions to the [Sink] interface.
// Nil fields are simply not invoked,
// which keeps ad-hoc sinks in tests and glue code terse.
type SinkFuncs[T any] struct {
	Next     func(v T)
	Err      func(err error)
	Complete func()
}

func (s SinkFuncs[T]) OnNext(v T) {
	if s.Next != nil {
		s.Next(v)
	}
}

func (s SinkFuncs[T]) OnError(err error) {
	if s.Err != nil {
		s.Err(err)
	}
}

func (s SinkFuncs[T]) OnComplete() {
	if s.Complete != nil {
		s.Complete()
	}
}
