package sreplay

import (
	"fmt"
	"sync/atomic"

	"github.com/gordian-engine/slipstream"
)

var _ slipstream.Source[int] = (*Cache[int])(nil)

// Cache subscribes to an upstream source at most once, lazily,
// and replays the source's entire sequence to every sink attached
// through [*Cache.Subscribe], no matter when it attaches.
//
// A Cache never resets: once the upstream sequence terminates,
// the recorded outcome is permanent and identical for every past
// and future sink.
type Cache[T any] struct {
	upstream slipstream.Source[T]

	// One-shot flag guarding the single upstream subscription.
	subscribed atomic.Bool

	// head anchors every new cursor at the start of the chain.
	head *segment[T]

	buf *multicast[T]
}

// New returns a Cache over upstream, buffering values in segments
// of segmentCap entries. The upstream subscription does not happen
// until the first call to [*Cache.Subscribe].
//
// New panics if segmentCap is not positive.
func New[T any](upstream slipstream.Source[T], segmentCap int) *Cache[T] {
	if segmentCap <= 0 {
		panic(fmt.Errorf("sreplay: segment capacity must be positive, got %d", segmentCap))
	}

	head := newSegment[T](segmentCap)
	return &Cache[T]{
		upstream: upstream,
		head:     head,
		buf:      newMulticast[T](head, segmentCap),
	}
}

// Subscribe implements [slipstream.Source].
// The sink receives the full buffered history followed by anything
// the upstream still emits, then the terminal signal.
// Attachment is unconditional; it never fails.
//
// The first Subscribe call ever is the one that subscribes the
// upstream source. Registration completes before that subscription
// starts, so an attachment racing the very first upstream event
// cannot miss it.
func (c *Cache[T]) Subscribe(sink slipstream.Sink[T]) slipstream.Disposable {
	cur := newCursor(c.buf, sink, c.head)
	c.buf.register(cur)
	cur.drain()

	if c.subscribed.CompareAndSwap(false, true) {
		c.upstream.Subscribe(c.buf)
	}

	return cur
}

// IsSubscribed reports whether the upstream subscription has been
// established yet. Advisory: the answer may be stale by the time
// the caller acts on it.
func (c *Cache[T]) IsSubscribed() bool {
	return c.subscribed.Load()
}

// SinkCount reports how many sinks are currently registered.
// Advisory, like [*Cache.IsSubscribed].
// Sinks that already observed the terminal signal do not count.
func (c *Cache[T]) SinkCount() int {
	return len(c.buf.cursors.Load().cursors)
}

// CachedCount reports how many values have been buffered so far.
// Advisory, like [*Cache.IsSubscribed].
func (c *Cache[T]) CachedCount() int64 {
	return c.buf.published.Load()
}
