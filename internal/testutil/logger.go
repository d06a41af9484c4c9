package testutil

import (
	"log"
	"testing"
)

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

func testLogger(t *testing.T) *log.Logger {
	return log.New(testWriter{t: t}, "[test] ", 0)
}

// NewLogger returns a *log.Logger that writes through t.Logf.
func NewLogger(t *testing.T) *log.Logger {
	return testLogger(t)
}
