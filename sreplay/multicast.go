package sreplay

import (
	"sync/atomic"

	"github.com/gordian-engine/slipstream"
)

var _ slipstream.Sink[int] = (*multicast[int])(nil)

// outcome is the recorded terminal event of the upstream sequence.
// A nil err means normal completion.
type outcome struct {
	err error
}

// cursorSet is one immutable snapshot of the registered cursors.
// Mutations build a replacement snapshot and swap it in atomically;
// a snapshot with terminal set is the final one and rejects
// further registration.
//
// The terminal marker lives on the snapshot value rather than being
// an empty-slice sentinel compared by pointer, because Go does not
// guarantee distinct addresses for zero-size allocations.
type cursorSet[T any] struct {
	terminal bool
	cursors  []*cursor[T]
}

// multicast owns the segment chain and fans upstream events out to
// every registered cursor. It is the single subscriber to the
// upstream source, so its Sink methods are entered by whatever
// goroutine the source delivers on.
//
// The Sink methods assume the standard sequential protocol:
// behavior is undefined if the source calls them concurrently.
type multicast[T any] struct {
	segmentCap int

	// Write side of the chain. Only the producer goroutine touches
	// these; tail is released once the sequence is terminal.
	tail    *segment[T]
	tailOff int

	// published counts values durably written into the chain.
	// It is incremented only after the value (and, when a segment
	// fills, the successor link) has been written, which is the
	// ordering that lets cursors read the chain without locks.
	published atomic.Int64

	// terminal is nil until the upstream finishes,
	// then holds the permanent outcome.
	terminal atomic.Pointer[outcome]

	cursors atomic.Pointer[cursorSet[T]]

	// Reused when the last cursor deregisters,
	// so the common attach/detach cycle of a single consumer
	// does not allocate a fresh empty snapshot each time.
	empty *cursorSet[T]

	// The registry value after termination.
	done *cursorSet[T]
}

func newMulticast[T any](head *segment[T], segmentCap int) *multicast[T] {
	m := &multicast[T]{
		segmentCap: segmentCap,
		tail:       head,
		empty:      &cursorSet[T]{},
		done:       &cursorSet[T]{terminal: true},
	}
	m.cursors.Store(m.empty)
	return m
}

// OnNext implements [slipstream.Sink].
func (m *multicast[T]) OnNext(v T) {
	if m.tailOff == m.segmentCap {
		s := newSegment[T](m.segmentCap)
		s.vals[0] = v
		m.tail.next = s
		m.tail = s
		m.tailOff = 1
	} else {
		m.tail.vals[m.tailOff] = v
		m.tailOff++
	}
	m.published.Add(1)

	for _, c := range m.cursors.Load().cursors {
		c.drain()
	}
}

// OnError implements [slipstream.Sink].
func (m *multicast[T]) OnError(err error) {
	m.finish(&outcome{err: err})
}

// OnComplete implements [slipstream.Sink].
func (m *multicast[T]) OnComplete() {
	m.finish(&outcome{})
}

func (m *multicast[T]) finish(o *outcome) {
	m.terminal.Store(o)

	// The write side is finished with the chain;
	// from here only cursors keep segments alive.
	m.tail = nil

	// Registration against the terminal snapshot is a no-op,
	// so swapping it in both captures the final cursor set
	// and closes the registry in one step.
	last := m.cursors.Swap(m.done)
	for _, c := range last.cursors {
		c.drain()
	}
}

// register adds c to the registry, unless the sequence already
// finished, in which case the cursor is left unregistered and will
// simply drain straight through to the terminal signal.
func (m *multicast[T]) register(c *cursor[T]) {
	for {
		cur := m.cursors.Load()
		if cur.terminal {
			return
		}

		next := make([]*cursor[T], len(cur.cursors)+1)
		copy(next, cur.cursors)
		next[len(next)-1] = c

		if m.cursors.CompareAndSwap(cur, &cursorSet[T]{cursors: next}) {
			return
		}
	}
}

// deregister removes c from the registry.
// Removing a cursor that is not present, including against the
// terminal snapshot, is a no-op.
func (m *multicast[T]) deregister(c *cursor[T]) {
	for {
		cur := m.cursors.Load()
		if cur.terminal || len(cur.cursors) == 0 {
			return
		}

		at := -1
		for i, rc := range cur.cursors {
			if rc == c {
				at = i
				break
			}
		}
		if at < 0 {
			return
		}

		var next *cursorSet[T]
		if len(cur.cursors) == 1 {
			next = m.empty
		} else {
			rest := make([]*cursor[T], len(cur.cursors)-1)
			copy(rest, cur.cursors[:at])
			copy(rest[at:], cur.cursors[at+1:])
			next = &cursorSet[T]{cursors: rest}
		}

		if m.cursors.CompareAndSwap(cur, next) {
			return
		}
	}
}
