package sreplay

// segment is one fixed-capacity slab of buffered values.
// Segments chain forward through next to form the full cached history.
//
// A value at index i, and the next link once set,
// are never modified again.
// Neither field carries its own synchronization:
// readers may only touch positions already covered by the
// multicast buffer's published count, whose atomic increment
// happens after the value write (and after the next-link write,
// for the first value of a successor segment).
// That single publish edge is what makes the plain reads safe.
type segment[T any] struct {
	vals []T
	next *segment[T]
}

func newSegment[T any](capacity int) *segment[T] {
	return &segment[T]{vals: make([]T, capacity)}
}
