package cron

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Job is one maintenance task run by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Periodic jobs run at most once per Every(). Jobs without it run on every cycle.
type Periodic interface {
	Every() time.Duration
}

// Registry holds uniquely named jobs and remembers when each last succeeded. The memory is per
// process, so a restarted worker runs every job on its first cycle.
type Registry struct {
	mu      sync.Mutex
	jobs    []Job
	lastRun map[string]time.Time
}

// NewRegistry rejects nil jobs and duplicate names.
func NewRegistry(jobs ...Job) (*Registry, error) {
	r := &Registry{lastRun: map[string]time.Time{}}
	for _, job := range jobs {
		if err := r.Register(job); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return fmt.Errorf("nil job")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.jobs {
		if existing.Name() == job.Name() {
			return fmt.Errorf("job %q already registered", job.Name())
		}
	}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy in registration order.
func (r *Registry) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

// Due returns the jobs whose cadence has elapsed at now.
func (r *Registry) Due(now time.Time) []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []Job
	for _, job := range r.jobs {
		periodic, ok := job.(Periodic)
		if !ok || periodic.Every() <= 0 {
			due = append(due, job)
			continue
		}
		last, ran := r.lastRun[job.Name()]
		if !ran || !now.Before(last.Add(periodic.Every())) {
			due = append(due, job)
		}
	}
	return due
}

// MarkRan records a successful run so periodic jobs wait out their cadence.
func (r *Registry) MarkRan(name string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRun[name] = at
}
