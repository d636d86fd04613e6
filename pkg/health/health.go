// Package health aggregates readiness checks over the service's
// backing stores.
package health

import (
	"context"
	"sync"
	"time"
)

// Status is the health status of a component or of the whole service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// AggregatedResult is the outcome of checking every registered component.
// Status is unhealthy as soon as any component is.
type AggregatedResult struct {
	Status    Status        `json:"status"`
	Checks    []CheckResult `json:"checks"`
	Timestamp time.Time     `json:"timestamp"`
}

// Checkable is implemented by the store adapters.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// checker pairs a registered component with its probe timeout.
type checker struct {
	name    string
	target  Checkable
	timeout time.Duration
}

func (c checker) check(ctx context.Context) CheckResult {
	start := time.Now()
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Timestamp: start,
	}
	if err := c.target.HealthCheck(probeCtx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.Duration = time.Since(start)
	return result
}

// Registry holds the readiness checks for the service's dependencies.
type Registry struct {
	mu       sync.RWMutex
	checkers []checker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a component check. A zero timeout defaults to 5s.
func (r *Registry) Register(name string, target Checkable, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker{name: name, target: target, timeout: timeout})
}

// Check probes every registered component concurrently.
func (r *Registry) Check(ctx context.Context) AggregatedResult {
	r.mu.RLock()
	checkers := make([]checker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func(i int, c checker) {
			defer wg.Done()
			results[i] = c.check(ctx)
		}(i, c)
	}
	wg.Wait()

	aggregated := AggregatedResult{Status: StatusHealthy, Checks: results, Timestamp: time.Now()}
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			aggregated.Status = StatusUnhealthy
		}
	}
	return aggregated
}
