// Package testutil provides test utilities for the negotiation engine.
package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug logger that writes to t.Log, so engine
// decisions show up next to a failing assertion or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// DecisionLog records the debug lines an engine logs, for tests that assert
// which dialect or version decision was taken. It is safe for concurrent use.
type DecisionLog struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewDecisionLogger returns a debug logger writing to a fresh DecisionLog.
func NewDecisionLogger() (*slog.Logger, *DecisionLog) {
	log := &DecisionLog{}
	return slog.New(slog.NewTextHandler(log, &slog.HandlerOptions{Level: slog.LevelDebug})), log
}

func (l *DecisionLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

// Lines returns the log lines containing msg, in order.
func (l *DecisionLog) Lines(msg string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	for _, line := range strings.Split(l.buf.String(), "\n") {
		if strings.Contains(line, "msg=\""+msg+"\"") || strings.Contains(line, "msg="+msg+" ") {
			out = append(out, line)
		}
	}
	return out
}
