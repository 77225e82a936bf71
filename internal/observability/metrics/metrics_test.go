package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("currency", "USD"),
		attribute.String("email", "a@b.com"),
		attribute.String("reason", "duplicate_external_id"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "email" {
			t.Fatalf("expected email to be dropped")
		}
	}
}

func TestRecordPaymentCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(Config{ServiceName: "payrecord-test"}, provider)
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	ctx := context.Background()
	m.RecordPaymentCreated(ctx, "USD")
	m.RecordPaymentCreated(ctx, "USD")
	m.RecordPaymentRejected(ctx, "validation_failed")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, md := range scope.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}

	if totals["payrecord_payments_created_total"] != 2 {
		t.Fatalf("expected 2 created, got %d", totals["payrecord_payments_created_total"])
	}
	if totals["payrecord_payments_rejected_total"] != 1 {
		t.Fatalf("expected 1 rejected, got %d", totals["payrecord_payments_rejected_total"])
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordPaymentCreated(context.Background(), "PEN")
	m.RecordRateLimitDenied(context.Background(), "/payments/create", "limit")
}
