package redis

import (
	"context"
	"testing"

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
	if _, err := NewAdapter(Config{URL: "not a url"}, mockLogger{}); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestMGet_NoKeys(t *testing.T) {
	a := &Adapter{}

	values, err := a.MGet(context.Background())
	if err != nil {
		t.Fatalf("MGet() error = %v", err)
	}
	if values != nil {
		t.Fatalf("MGet() = %v, want nil for no keys", values)
	}
}

func TestDelete_NoKeys(t *testing.T) {
	a := &Adapter{}

	if err := a.Delete(context.Background()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}
