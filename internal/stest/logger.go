package stest

import (
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a logger whose output is associated with t,
// so that log lines are only shown for failing tests.
func NewLogger(t testing.TB) *slog.Logger {
	return slogt.New(t)
}
