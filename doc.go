// Package slipstream contains the core contracts for push-based event
// streams: a [Source] produces a sequence of values, a [Sink] consumes
// one, and a [Disposable] detaches a sink from its source.
//
// The contracts are deliberately small.
// Declarative operators, schedulers, and blocking adapters
// are expected to live in their own packages and compose these types.
// The one execution primitive shipped in this module is the
// replay-multicast cache in the sreplay package;
// the schan package bridges plain Go channels to these contracts.
package slipstream
