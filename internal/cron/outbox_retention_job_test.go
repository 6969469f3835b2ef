package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/littlemija/littlemija-backend/pkg/db/dbtest"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	"github.com/littlemija/littlemija-backend/pkg/metrics"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
)

func TestOutboxRetentionJobDeletesPublishedRows(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRepo{deleted: 7}
	job := newOutboxRetentionJob(t, repo, 0)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.Add(-defaultOutboxRetention)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
	if job.Every() != defaultRetentionEvery {
		t.Fatalf("expected daily cadence, got %s", job.Every())
	}
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	repo := &fakeOutboxRepo{err: errors.New("boom")}
	job := newOutboxRetentionJob(t, repo, time.Hour)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestOutboxRetentionJobAgainstDatabase(t *testing.T) {
	conn := dbtest.Open(t)
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	rows := []models.OutboxEvent{
		outboxRow(&old),
		outboxRow(&recent),
		outboxRow(nil),
	}
	for i := range rows {
		if err := conn.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	job := newOutboxRetentionJob(t, outbox.NewRepository(conn), 30*24*time.Hour)
	job.now = func() time.Time { return now }
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var remaining []models.OutboxEvent
	if err := conn.Order("created_at").Find(&remaining).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 rows left, got %d", len(remaining))
	}
	for _, row := range remaining {
		if row.ID == rows[0].ID {
			t.Fatal("expired published row should be gone")
		}
	}
}

func TestOutboxBacklogJob(t *testing.T) {
	repo := &fakeOutboxRepo{exhausted: 3}
	reg := prometheus.NewRegistry()
	jobIface, err := NewOutboxBacklogJob(OutboxBacklogJobParams{
		Logger:     logger.Nop(),
		Repository: repo,
		Metrics:    metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("NewOutboxBacklogJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if repo.maxAttempts != defaultOutboxMaxAttempts {
		t.Fatalf("expected default max attempts, got %d", repo.maxAttempts)
	}
	if got := gaugeValue(t, reg, "littlemija_outbox_exhausted_events"); got != 3 {
		t.Fatalf("expected exhausted gauge 3, got %v", got)
	}

	repo.err = errors.New("down")
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newOutboxRetentionJob(t *testing.T, repo outboxRetentionRepo, retention time.Duration) *outboxRetentionJob {
	t.Helper()
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Retention:  retention,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job, ok := jobIface.(*outboxRetentionJob)
	if !ok {
		t.Fatalf("expected outboxRetentionJob, got %T", jobIface)
	}
	return job
}

func outboxRow(publishedAt *time.Time) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{}`),
		PublishedAt:   publishedAt,
	}
}

type fakeOutboxRepo struct {
	lastCutoff  time.Time
	called      int
	deleted     int64
	exhausted   int64
	maxAttempts int
	err         error
}

func (f *fakeOutboxRepo) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func (f *fakeOutboxRepo) CountExhausted(ctx context.Context, maxAttempts int) (int64, error) {
	f.maxAttempts = maxAttempts
	if f.err != nil {
		return 0, f.err
	}
	return f.exhausted, nil
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
