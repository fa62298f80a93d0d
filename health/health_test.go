package health

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/waldmeta/mint/counter"
)

type slowPinger struct {
	delay time.Duration
	err   error
}

func (p slowPinger) Ping(ctx context.Context) error {
	select {
	case <-time.After(p.delay):
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestStoreCheck(t *testing.T) {
	closed := counter.NewMemoryStore()
	_ = closed.Close()

	tests := []struct {
		name   string
		pinger counter.Pinger
		slow   time.Duration
		want   string
	}{
		{"memory store", counter.NewMemoryStore(), 0, StatusHealthy},
		{"closed store", closed, 0, StatusUnhealthy},
		{"not configured", nil, 0, StatusUnhealthy},
		{"ping error", slowPinger{err: errors.New("connection refused")}, 0, StatusUnhealthy},
		{"slow store", slowPinger{delay: 20 * time.Millisecond}, time.Millisecond, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			status := StoreCheck(ctx, "test", tt.pinger, tt.slow)
			if status.Status != tt.want {
				t.Errorf("expected status %s, got %s: %s", tt.want, status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
			if status.Status != StatusHealthy && tt.pinger != nil && status.Details == nil {
				t.Error("expected details for non-healthy status")
			}
		})
	}
}

func TestStoreCheckContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status := StoreCheck(ctx, "test", slowPinger{delay: time.Second}, 0)
	if !status.IsUnhealthy() {
		t.Errorf("expected unhealthy status for cancelled context, got %s", status.Status)
	}
}

func TestEndpointCheck(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	tests := []struct {
		name          string
		address       string
		expectHealthy bool
	}{
		{"listening redis", listener.Addr().String(), true},
		{"missing port", "127.0.0.1", false},
		{"port out of range", "127.0.0.1:70000", false},
		{"port zero", "127.0.0.1:0", false},
		{"empty host", ":6379", false},
		{"empty address", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			status := EndpointCheck(ctx, "redis", tt.address)

			if tt.expectHealthy && !status.IsHealthy() {
				t.Errorf("expected healthy status, got %s: %s", status.Status, status.Message)
			}
			if !tt.expectHealthy && status.IsHealthy() {
				t.Errorf("expected unhealthy status, got %s: %s", status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestEndpointCheckStoreDown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}
	address := listener.Addr().String()
	listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	status := EndpointCheck(ctx, "etcd", address)
	if !status.IsUnhealthy() {
		t.Errorf("expected unhealthy status for closed endpoint, got %s", status.Status)
	}
	if status.Details["error"] == nil {
		t.Error("expected error detail")
	}
	if status.Details["store"] != "etcd" {
		t.Errorf("expected store detail etcd, got %v", status.Details["store"])
	}
}

func TestDirCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "counters.vlog")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"existing directory", dir, StatusHealthy},
		{"regular file", file, StatusUnhealthy},
		{"missing path", filepath.Join(dir, "missing"), StatusUnhealthy},
		{"empty path", "", StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := DirCheck(tt.path)
			if status.Status != tt.want {
				t.Errorf("expected status %s, got %s: %s", tt.want, status.Status, status.Message)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name         string
		checks       []Status
		expectStatus string
	}{
		{
			name:         "all healthy",
			checks:       []Status{Healthy("check 1"), Healthy("check 2")},
			expectStatus: StatusHealthy,
		},
		{
			name:         "one unhealthy",
			checks:       []Status{Healthy("check 1"), Unhealthy("check 2 failed", nil)},
			expectStatus: StatusUnhealthy,
		},
		{
			name:         "one degraded",
			checks:       []Status{Healthy("check 1"), Degraded("check 2 degraded", nil)},
			expectStatus: StatusDegraded,
		},
		{
			name: "unhealthy takes precedence",
			checks: []Status{
				Degraded("check 1 degraded", nil),
				Unhealthy("check 2 failed", nil),
			},
			expectStatus: StatusUnhealthy,
		},
		{
			name:         "no checks",
			checks:       nil,
			expectStatus: StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Combine(tt.checks...)

			if status.Status != tt.expectStatus {
				t.Errorf("expected status %s, got %s: %s", tt.expectStatus, status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
			if status.Status != StatusHealthy && status.Details == nil {
				t.Error("expected details for non-healthy status")
			}
		})
	}
}

func TestCombineUnnamedChecks(t *testing.T) {
	status := Combine(Status{Status: StatusUnhealthy})

	failed, ok := status.Details["failed_checks"].([]string)
	if !ok || len(failed) != 1 || failed[0] != "unnamed check" {
		t.Errorf("expected unnamed check in failed_checks, got %v", status.Details["failed_checks"])
	}
}
