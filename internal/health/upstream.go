package health

import (
	"context"
	"time"
)

const defaultProbeTimeout = 3 * time.Second

// ProbeFunc performs one round trip against a dependency.
type ProbeFunc func(ctx context.Context) error

// UpstreamChecker reports a dependency as unhealthy when its probe fails.
type UpstreamChecker struct {
	name    string
	probe   ProbeFunc
	timeout time.Duration
}

// NewUpstreamChecker creates a checker that runs probe with the given
// timeout. A non-positive timeout uses the default of three seconds.
func NewUpstreamChecker(name string, probe ProbeFunc, timeout time.Duration) *UpstreamChecker {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &UpstreamChecker{
		name:    name,
		probe:   probe,
		timeout: timeout,
	}
}

func (c *UpstreamChecker) Name() string {
	return c.name
}

func (c *UpstreamChecker) Check(ctx context.Context) CheckResult {
	if c.probe == nil {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "not configured (optional)",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	if err := c.probe(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   err.Error(),
			Message: "upstream probe failed",
		}
	}

	latency := time.Since(start)
	if latency > c.timeout/2 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "upstream reachable but slow (" + latency.Round(time.Millisecond).String() + ")",
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "upstream reachable",
	}
}
