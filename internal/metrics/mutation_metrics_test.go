package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMutationMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newMutationMetricsWithRegisterer(registry)

	if m == nil {
		t.Fatal("newMutationMetricsWithRegisterer should not return nil")
	}
	if m.mutations == nil {
		t.Error("mutations counter vec should not be nil")
	}
	if m.mutationDuration == nil {
		t.Error("mutationDuration histogram vec should not be nil")
	}
	if m.bulkBatchSize == nil {
		t.Error("bulkBatchSize histogram should not be nil")
	}
	if m.bulkRejected == nil {
		t.Error("bulkRejected counter should not be nil")
	}
}

func TestNewMutationMetrics_DoubleRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newMutationMetricsWithRegisterer(registry)
	second := newMutationMetricsWithRegisterer(registry)

	// Повторная регистрация возвращает уже существующие коллекторы.
	if first.mutations != second.mutations {
		t.Error("expected the same counter vec after re-registration")
	}
}

func TestRecordMutation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newMutationMetricsWithRegisterer(registry)

	m.RecordMutation("createCustomer", time.Now(), nil)
	m.RecordMutation("createCustomer", time.Now(), errors.New("boom"))
	m.RecordMutation("createOrder", time.Now(), nil)

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("createCustomer", "ok")); got != 1 {
		t.Errorf("createCustomer/ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.mutations.WithLabelValues("createCustomer", "error")); got != 1 {
		t.Errorf("createCustomer/error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.mutations.WithLabelValues("createOrder", "ok")); got != 1 {
		t.Errorf("createOrder/ok = %v, want 1", got)
	}
}

func TestRecordBulkBatch(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newMutationMetricsWithRegisterer(registry)

	m.RecordBulkBatch(10, 3)
	m.RecordBulkBatch(5, 0)

	if got := testutil.ToFloat64(m.bulkRejected); got != 3 {
		t.Errorf("bulkRejected = %v, want 3", got)
	}
}

func TestRecordMutation_NilReceiver(t *testing.T) {
	var m *MutationMetrics
	// Метрики опциональны: nil-приёмник не должен паниковать.
	m.RecordMutation("createProduct", time.Now(), nil)
	m.RecordBulkBatch(1, 0)
}
