package redis

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cosmetia/cosmetia/pkg/observability/logger"
)

// TestAdapter_Integration tests the Redis adapter against a real Redis
// instance using testcontainers.
func TestAdapter_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	log, err := logger.NewZapLogger(logger.Config{
		Level:  logger.InfoLevel,
		Format: logger.JSONFormat,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	newAdapter := func(t *testing.T) *Adapter {
		t.Helper()
		adapter, err := NewAdapter(Config{
			URL:              connStr,
			MaxConns:         10,
			OperationTimeout: 5 * time.Second,
		}, log)
		if err != nil {
			t.Fatalf("Failed to create adapter: %v", err)
		}
		return adapter
	}

	t.Run("ConnectionAndPing", func(t *testing.T) {
		adapter := newAdapter(t)
		defer adapter.Close()

		if err := adapter.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
		if err := adapter.HealthCheck(ctx); err != nil {
			t.Errorf("Health check failed: %v", err)
		}
	})

	t.Run("SetAndGet", func(t *testing.T) {
		adapter := newAdapter(t)
		defer adapter.Close()

		if err := adapter.Set(ctx, "refdata:ingredients:1", "aqua", 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		value, err := adapter.Get(ctx, "refdata:ingredients:1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if value != "aqua" {
			t.Errorf("Get = %q, want %q", value, "aqua")
		}

		adapter.Delete(ctx, "refdata:ingredients:1")
	})

	t.Run("MGetReportsMisses", func(t *testing.T) {
		adapter := newAdapter(t)
		defer adapter.Close()

		if err := adapter.Set(ctx, "refdata:brands:1", "brand one", 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		values, err := adapter.MGet(ctx, "refdata:brands:1", "refdata:brands:absent")
		if err != nil {
			t.Fatalf("MGet failed: %v", err)
		}
		if len(values) != 2 {
			t.Fatalf("MGet returned %d values, want 2", len(values))
		}
		if values[0] != "brand one" {
			t.Errorf("values[0] = %v, want %q", values[0], "brand one")
		}
		if values[1] != nil {
			t.Errorf("values[1] = %v, want nil for a miss", values[1])
		}

		adapter.Delete(ctx, "refdata:brands:1")
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		adapter := newAdapter(t)
		defer adapter.Close()

		if err := adapter.Set(ctx, "refdata:ttl:1", "ephemeral", 1*time.Second); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		time.Sleep(2 * time.Second)

		if _, err := adapter.Get(ctx, "refdata:ttl:1"); err == nil {
			t.Error("Expected Get to fail after TTL expiry, but it succeeded")
		}
	})

	t.Run("GracefulShutdown", func(t *testing.T) {
		adapter := newAdapter(t)

		if err := adapter.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
		if err := adapter.Ping(ctx); err == nil {
			t.Error("Expected ping to fail after close, but it succeeded")
		}
	})
}
