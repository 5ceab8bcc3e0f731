package stest

import (
	"testing"
	"time"
)

// How long the *Soon helpers wait before failing the test.
// Long enough for a heavily loaded CI machine,
// short enough to not stall a failing run badly.
const soonTimeout = 5 * time.Second

// ReceiveSoon returns the next value received from ch,
// failing t if nothing arrives within the timeout.
func ReceiveSoon[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	timer := time.NewTimer(soonTimeout)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v
	case <-timer.C:
		t.Fatalf("did not receive on channel within %s", soonTimeout)
		panic("unreachable")
	}
}

// SendSoon sends v on ch,
// failing t if the send does not complete within the timeout.
func SendSoon[T any](t *testing.T, ch chan<- T, v T) {
	t.Helper()

	timer := time.NewTimer(soonTimeout)
	defer timer.Stop()

	select {
	case ch <- v:
	case <-timer.C:
		t.Fatalf("could not send on channel within %s", soonTimeout)
	}
}

// IsSending returns the value ch is currently sending,
// failing t if ch is not immediately ready.
func IsSending[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	default:
		t.Fatal("channel was not sending")
		panic("unreachable")
	}
}

// NotSending fails t if ch is ready to receive from.
func NotSending[T any](t *testing.T, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
		t.Fatal("channel was unexpectedly sending")
	default:
	}
}
