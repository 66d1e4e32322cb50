package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManagerRegistersOnCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(WithRegistry(reg), WithNamespace("test"), WithSubsystem("sub"))

	m.strokesEncoded.Inc()
	m.budgetViolations.Inc()
	m.budgetViolations.Inc()

	if got := testutil.ToFloat64(m.strokesEncoded); got != 1 {
		t.Fatalf("strokes encoded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.budgetViolations); got != 2 {
		t.Fatalf("budget violations = %v, want 2", got)
	}
}

func TestPackageHelpersDoNotPanic(t *testing.T) {
	RecordStrokeEncoded()
	RecordHotLatency(0.42)
	RecordBudgetViolation()
	RecordColdLatency("image", 12.5)
	RecordColdTask("temporal", "ok")
	RecordTaskFailure()
	UpdateQueueSize(3)
	UpdateQueueCapacity(100)
	UpdateQueueUtilization(0.03)
	RecordQueueEnqueue()
	RecordQueueDequeue()
	RecordQueueRejection()
	UpdateWorkerActiveCount(2)
	UpdateWorkerBusyCount(1)
	RecordStorageOpLatency("save", "memory", 0.2)
	RecordStorageError("bolt")
	UpdateActiveSessions(1)

	if GetRegistry() == nil {
		t.Fatal("expected non-nil registry")
	}
}
