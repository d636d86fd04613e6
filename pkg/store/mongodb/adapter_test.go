package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/cosmetia/cosmetia/pkg/observability/logger"
)

type mockLogger struct{}

func (mockLogger) Debug(string, ...any)                        {}
func (mockLogger) Info(string, ...any)                         {}
func (mockLogger) Warn(string, ...any)                         {}
func (mockLogger) Error(string, ...any)                        {}
func (m mockLogger) With(...any) logger.Logger                 { return m }
func (m mockLogger) WithContext(context.Context) logger.Logger { return m }

func TestNewAdapter_Validation(t *testing.T) {
	if _, err := NewAdapter(Config{}, mockLogger{}); err == nil {
		t.Fatal("expected error for empty URL")
	}
	if _, err := NewAdapter(Config{URL: "mongodb://localhost:27017"}, mockLogger{}); err == nil {
		t.Fatal("expected error for empty database")
	}
}

func TestPing_WhenClosed(t *testing.T) {
	a := &Adapter{closed: true}
	if err := a.Ping(context.Background()); err == nil {
		t.Fatal("expected error when adapter is closed")
	}
}

func TestClose_Idempotent(t *testing.T) {
	a := &Adapter{closed: true}
	if err := a.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestWithOperationTimeout_AppliesAdapterTimeout(t *testing.T) {
	a := &Adapter{timeout: 2 * time.Second}

	ctx, cancel := a.withOperationTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline from operation timeout")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > 2*time.Second {
		t.Fatalf("unexpected remaining timeout: %v", remaining)
	}
}

func TestWithOperationTimeout_PreservesCallerDeadline(t *testing.T) {
	a := &Adapter{timeout: 2 * time.Second}
	parentCtx, parentCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer parentCancel()

	ctx, cancel := a.withOperationTimeout(parentCtx)
	defer cancel()

	parentDeadline, _ := parentCtx.Deadline()
	gotDeadline, _ := ctx.Deadline()
	if !gotDeadline.Equal(parentDeadline) {
		t.Fatalf("deadline = %v, want caller's %v", gotDeadline, parentDeadline)
	}
}
