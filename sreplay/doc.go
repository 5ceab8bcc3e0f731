// Package sreplay provides a multicast replay cache:
// a [Cache] subscribes to an upstream source at most once,
// buffers everything the source emits, and replays the whole
// sequence to any number of downstream sinks, attached at any time,
// each progressing at its own pace.
//
// The cache is unbounded; it never discards a buffered value.
// Sinks that stop consuming therefore pin the buffer in memory
// for as long as the cache itself is reachable.
package sreplay
