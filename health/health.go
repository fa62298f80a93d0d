package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/waldmeta/mint/counter"
)

// DefaultSlowThreshold is the store round trip above which StoreCheck
// reports a degraded status.
const DefaultSlowThreshold = 250 * time.Millisecond

// StoreCheck pings a counter store. A ping slower than slow (or
// DefaultSlowThreshold when slow is zero) is reported as degraded.
//
// Example:
//
//	status := health.StoreCheck(ctx, "redis", store, 0)
//	if status.IsUnhealthy() {
//	    log.Println("counter store is down")
//	}
func StoreCheck(ctx context.Context, name string, p counter.Pinger, slow time.Duration) Status {
	if p == nil {
		return Unhealthy(fmt.Sprintf("%s store is not configured", name), nil)
	}
	if slow <= 0 {
		slow = DefaultSlowThreshold
	}

	start := time.Now()
	err := p.Ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return Unhealthy(
			fmt.Sprintf("%s store is unreachable", name),
			map[string]any{
				"store": name,
				"error": err.Error(),
			},
		)
	}

	if elapsed > slow {
		return Degraded(
			fmt.Sprintf("%s store answered slowly", name),
			map[string]any{
				"store":        name,
				"latency_ms":   elapsed.Milliseconds(),
				"threshold_ms": slow.Milliseconds(),
			},
		)
	}

	return Healthy(fmt.Sprintf("%s store answered in %s", name, elapsed.Round(time.Microsecond)))
}

// EndpointCheck dials a store endpoint ("host:port") over TCP. It tells a
// refused or unroutable store apart from one that accepts connections but
// fails to answer a ping.
func EndpointCheck(ctx context.Context, name, address string) Status {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return Unhealthy(
			fmt.Sprintf("%s endpoint %q is not host:port", name, address),
			map[string]any{"store": name, "address": address},
		)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return Unhealthy(
			fmt.Sprintf("%s endpoint %q has an invalid port", name, address),
			map[string]any{"store": name, "address": address},
		)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return Unhealthy(
			fmt.Sprintf("%s endpoint %s refused the connection", name, address),
			map[string]any{
				"store":   name,
				"address": address,
				"error":   err.Error(),
			},
		)
	}
	_ = conn.Close()

	return Healthy(fmt.Sprintf("%s endpoint %s accepts connections", name, address))
}

// DirCheck verifies that path exists and is a directory, as an on-disk
// store needs.
func DirCheck(path string) Status {
	if path == "" {
		return Unhealthy("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unhealthy(
				fmt.Sprintf("directory '%s' does not exist", path),
				map[string]any{"path": path},
			)
		}
		return Unhealthy(
			fmt.Sprintf("failed to stat '%s'", path),
			map[string]any{
				"path":  path,
				"error": err.Error(),
			},
		)
	}

	if !info.IsDir() {
		return Unhealthy(
			fmt.Sprintf("'%s' is not a directory", path),
			map[string]any{"path": path},
		)
	}

	return Healthy(fmt.Sprintf("directory '%s' exists", path))
}

// Combine aggregates multiple statuses:
//   - If any check is unhealthy, the result is unhealthy
//   - If any check is degraded (and none unhealthy), the result is degraded
//   - Otherwise the result is healthy
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return Healthy("no checks provided")
	}

	var unhealthy, degraded []string
	var healthyCount int

	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthy = append(unhealthy, msg)
		case StatusDegraded:
			degraded = append(degraded, msg)
		case StatusHealthy:
			healthyCount++
		}
	}

	if len(unhealthy) > 0 {
		return Unhealthy(
			fmt.Sprintf("%d check(s) failed", len(unhealthy)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthy),
				"degraded":      len(degraded),
				"healthy":       healthyCount,
				"failed_checks": unhealthy,
			},
		)
	}

	if len(degraded) > 0 {
		return Degraded(
			fmt.Sprintf("%d check(s) degraded", len(degraded)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degraded),
				"healthy":         healthyCount,
				"degraded_checks": degraded,
			},
		)
	}

	return Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)))
}
