package server

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMetricsServerLifecycle(t *testing.T) {
	t.Parallel()
	srv := NewMetricsServer("127.0.0.1:0", zerolog.Nop())
	srv.Start()

	// Give the listener a moment before shutting down.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	t.Parallel()
	srv := NewMetricsServer("127.0.0.1:0", zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown before Start: %v", err)
	}
}

func TestDefaultTimeouts(t *testing.T) {
	t.Parallel()
	timeouts := DefaultTimeouts()
	if timeouts.ReadTimeout <= 0 || timeouts.WriteTimeout <= 0 || timeouts.IdleTimeout <= 0 {
		t.Errorf("timeouts must be positive: %+v", timeouts)
	}
}
