package sreplay

import (
	"sync/atomic"

	"github.com/gordian-engine/slipstream"
)

var _ slipstream.Disposable = (*cursor[int])(nil)

// cursor tracks one attached sink's progress through the segment chain.
// It doubles as the [slipstream.Disposable] returned from
// [*Cache.Subscribe].
//
// The missed counter is the drain permit:
// at most one goroutine runs the replay loop for a cursor at a time.
// Callers that lose the race to take the permit have still recorded
// their request in the counter, and the active drainer re-checks it
// before letting go.
type cursor[T any] struct {
	missed atomic.Int64

	buf  *multicast[T]
	sink slipstream.Sink[T]

	// Replay position.
	// Only the goroutine holding the drain permit
	// reads or writes these three fields.
	seg      *segment[T]
	offset   int
	consumed int64

	disposed atomic.Bool
}

func newCursor[T any](buf *multicast[T], sink slipstream.Sink[T], head *segment[T]) *cursor[T] {
	return &cursor[T]{
		buf:  buf,
		sink: sink,
		seg:  head,
	}
}

// Dispose implements [slipstream.Disposable].
// After the flag is set, the next drain iteration stops delivery,
// and the cursor leaves the buffer's registry so that
// future upstream events no longer schedule it at all.
func (c *cursor[T]) Dispose() {
	if c.disposed.CompareAndSwap(false, true) {
		c.buf.deregister(c)
	}
}

// IsDisposed implements [slipstream.Disposable].
func (c *cursor[T]) IsDisposed() bool {
	return c.disposed.Load()
}

// drain replays every buffered value the cursor has not yet seen,
// followed by the terminal signal if the buffer has finished.
// It may be called concurrently and redundantly from any goroutine;
// redundant callers return immediately after bumping the permit.
// drain never blocks on another drainer.
func (c *cursor[T]) drain() {
	if c.missed.Add(1) != 1 {
		// Another goroutine holds the permit.
		// It will observe our increment before releasing.
		return
	}

	buf := c.buf
	sink := c.sink

	seg := c.seg
	offset := c.offset
	consumed := c.consumed

	missed := int64(1)
	for {
		for {
			if c.disposed.Load() {
				// Drop the chain reference so the buffered prefix
				// can be collected once nobody else needs it.
				// The permit is deliberately not released:
				// every later drain call sees a nonzero counter
				// and returns without delivering anything.
				c.seg = nil
				return
			}

			// The terminal outcome must load before the published
			// count. The count only grows while non-terminal,
			// so this order can never yield a false end-of-stream
			// while values are still arriving.
			term := buf.terminal.Load()
			caughtUp := consumed == buf.published.Load()

			if term != nil && caughtUp {
				c.seg = nil
				if term.err != nil {
					sink.OnError(term.err)
				} else {
					sink.OnComplete()
				}
				// Permit intentionally kept, as in the disposed case.
				return
			}

			if caughtUp {
				break
			}

			if offset == len(seg.vals) {
				// The link was written before the publish that
				// made position `consumed` visible, so it is
				// guaranteed non-nil here.
				seg = seg.next
				offset = 0
			}

			sink.OnNext(seg.vals[offset])
			offset++
			consumed++
		}

		c.seg = seg
		c.offset = offset
		c.consumed = consumed

		// Release-then-recheck: subtract only the requests we have
		// absorbed. A nonzero remainder means more work arrived
		// while draining, and we still hold the permit for it.
		missed = c.missed.Add(-missed)
		if missed == 0 {
			return
		}
	}
}
