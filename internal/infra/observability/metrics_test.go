package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.RecordRequest("GET", 200, 10*time.Millisecond)
	m.RecordRequest("GET", 200, 10*time.Millisecond)
	m.RecordRequest("POST", 422, 10*time.Millisecond)
	m.RecordRequest("GET", 0, 10*time.Millisecond)
	m.IncrNetworkRetry()
	m.IncrNetworkRetry()
	m.IncrForcedLogout()

	snap := m.Snapshot()
	if snap.TotalRequests != 4 {
		t.Errorf("expected 4 requests, got %d", snap.TotalRequests)
	}
	if snap.ErrorRequests != 2 {
		t.Errorf("expected 2 failed requests, got %d", snap.ErrorRequests)
	}
	if snap.ErrorRate != 0.5 {
		t.Errorf("expected error rate 0.5, got %v", snap.ErrorRate)
	}
	if snap.NetworkRetries != 2 {
		t.Errorf("expected 2 retries, got %d", snap.NetworkRetries)
	}
	if snap.ForcedLogouts != 1 {
		t.Errorf("expected 1 forced logout, got %d", snap.ForcedLogouts)
	}
}

func TestMetrics_EmptySnapshot(t *testing.T) {
	snap := observability.NewMetrics().Snapshot()
	if snap.TotalRequests != 0 || snap.ErrorRate != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := observability.InitTracer(context.Background(), "helpdesk-test", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}
