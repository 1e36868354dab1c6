package cli

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSpinnerShowsStatus(t *testing.T) {
	var buf bytes.Buffer
	var nodes atomic.Int32
	s := newSpinner(context.Background(), &buf, func() string {
		return "crawled " + strings.Repeat("x", int(nodes.Add(1))%3) + " nodes"
	})
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "crawled") {
		t.Errorf("spinner output missing status: %q", buf.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not mark the spinner as cancelled")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	s := newSpinner(ctx, &buf, func() string { return "waiting" })
	s.Start()
	cancel()

	// Stop waits for the animation goroutine to exit.
	s.Stop()
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, func() string { return "idle" })
	s.Start()

	s.Stop()
	s.Stop()
}
