package instrumentation

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func newTestMetrics(t *testing.T, detailedLabels bool) *Metrics {
	t.Helper()
	provider := sdkmetric.NewMeterProvider()
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})
	m, err := NewMetrics(provider.Meter("test"), detailedLabels)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m
}

func TestNewMetrics(t *testing.T) {
	m := newTestMetrics(t, false)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestRecordingDoesNotPanic(t *testing.T) {
	m := newTestMetrics(t, true)
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 25*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationSearch, StatusSuccess, 120*time.Millisecond)
	m.RecordAuthResolution("bearer_opaque")
	m.RecordAuthResolution("unresolved")
	m.RecordSSOTokenInjection(ctx, "success")
	m.RecordToolInvocation(ctx, "search_gmail_messages", StatusSuccess, 200*time.Millisecond)
	m.RecordToolInvocationWithAccount(ctx, "search_gmail_messages", StatusError, "jane@example.com", time.Second)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)
}

func TestUninitializedMetricsAreNoOps(t *testing.T) {
	// The zero value is used when instrumentation is disabled; every
	// recorder must tolerate it.
	m := &Metrics{}
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationGet, StatusError, time.Millisecond)
	m.RecordAuthResolution("session_binding")
	m.RecordSSOTokenInjection(ctx, "no_token")
	m.RecordToolInvocation(ctx, "list_drive_items", StatusSuccess, time.Millisecond)
	m.RecordToolInvocationWithAccount(ctx, "list_drive_items", StatusSuccess, "", time.Millisecond)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)
}
