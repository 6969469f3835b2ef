package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	finished := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	m.ObserveRun("outbox-retention", 250*time.Millisecond, nil, finished)
	m.ObserveRun("outbox-retention", time.Second, errors.New("db down"), finished.Add(time.Hour))
	m.IncSkipped()
	m.SetOutboxExhausted(3)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("outbox-retention", outcomeSuccess)); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("outbox-retention", outcomeFailure)); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastSuccess.WithLabelValues("outbox-retention")); got != float64(finished.Unix()) {
		t.Fatalf("failed run must not move last success, got %v", got)
	}
	if got := testutil.ToFloat64(m.skipped); got != 1 {
		t.Fatalf("expected 1 skipped cycle, got %v", got)
	}
	if got := testutil.ToFloat64(m.exhausted); got != 3 {
		t.Fatalf("expected exhausted gauge 3, got %v", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	sum := histogramSum(mfs, "littlemija_cron_job_duration_seconds")
	if sum < 1.25 || sum > 1.26 {
		t.Fatalf("expected duration sum 1.25s, got %v", sum)
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveRun("job", time.Second, nil, time.Now())
	m.IncSkipped()
	m.SetOutboxExhausted(1)

	unregistered := NewCronJobMetrics(nil)
	unregistered.ObserveRun("", time.Second, errors.New("x"), time.Now())
}

func histogramSum(mfs []*dto.MetricFamily, name string) float64 {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, metric := range mf.GetMetric() {
			sum += metric.GetHistogram().GetSampleSum()
		}
		return sum
	}
	return 0
}
