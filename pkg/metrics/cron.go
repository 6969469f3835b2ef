package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "littlemija"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// CronJobMetrics covers the cron worker: per-job runs, cycles skipped because another replica held the
// lock, and the size of the undeliverable outbox backlog.
type CronJobMetrics struct {
	duration    *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
	skipped     prometheus.Counter
	exhausted   prometheus.Gauge
}

// NewCronJobMetrics registers on reg. A nil reg yields a recorder that drops everything.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cron_job_duration_seconds",
			Help:      "Duration of cron jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cron_job_runs_total",
			Help:      "Cron job executions by outcome.",
		}, []string{"job", "outcome"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cron_job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per job.",
		}, []string{"job"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cron_cycles_skipped_total",
			Help:      "Cycles skipped because another worker held the cron lock.",
		}),
		exhausted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_exhausted_events",
			Help:      "Order events that used up their publish attempts.",
		}),
	}
	reg.MustRegister(m.duration, m.runs, m.lastSuccess, m.skipped, m.exhausted)
	return m
}

// ObserveRun records one job execution. A nil err counts as success.
func (c *CronJobMetrics) ObserveRun(job string, duration time.Duration, err error, finishedAt time.Time) {
	if c == nil || c.runs == nil {
		return
	}
	job = normalizeLabel(job)
	c.duration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		c.runs.WithLabelValues(job, outcomeFailure).Inc()
		return
	}
	c.runs.WithLabelValues(job, outcomeSuccess).Inc()
	c.lastSuccess.WithLabelValues(job).Set(float64(finishedAt.Unix()))
}

func (c *CronJobMetrics) IncSkipped() {
	if c == nil || c.skipped == nil {
		return
	}
	c.skipped.Inc()
}

// SetOutboxExhausted publishes the latest exhausted-event count.
func (c *CronJobMetrics) SetOutboxExhausted(n int64) {
	if c == nil || c.exhausted == nil {
		return
	}
	c.exhausted.Set(float64(n))
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
