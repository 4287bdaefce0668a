package outbox

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// HandlerFunc processes one job payload. Returning an error reschedules the
// job with backoff; returning nil completes it.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Dispatcher drains due jobs and routes them to their kind's handler.
type Dispatcher struct {
	store    Store
	handlers map[string]HandlerFunc
	logger   *log.Logger
	interval time.Duration
	batch    int
}

// NewDispatcher builds a Dispatcher polling at the given interval.
func NewDispatcher(store Store, logger *log.Logger, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Dispatcher{
		store:    store,
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
		interval: interval,
		batch:    20,
	}
}

// Register binds a handler to a job kind. Jobs of unregistered kinds fail
// and retry, so a newer binary can pick them up after a deploy.
func (d *Dispatcher) Register(kind string, h HandlerFunc) {
	d.handlers[kind] = h
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.RunOnce(ctx)
		}
	}
}

// RunOnce claims one batch of due jobs and processes it.
func (d *Dispatcher) RunOnce(ctx context.Context) {
	jobs, err := d.store.ClaimDue(ctx, d.batch)
	if err != nil {
		d.logger.Printf("claim jobs: %v", err)
		return
	}
	for _, job := range jobs {
		d.process(ctx, job)
	}
}

func (d *Dispatcher) process(ctx context.Context, job Job) {
	handler, ok := d.handlers[job.Kind]
	if !ok {
		d.logger.Printf("job %s: no handler for kind %q", job.ID, job.Kind)
		if err := d.store.Fail(ctx, job, "no handler registered"); err != nil {
			d.logger.Printf("job %s: record failure: %v", job.ID, err)
		}
		return
	}

	if err := handler(ctx, job.Payload); err != nil {
		d.logger.Printf("job %s (%s) attempt %d failed: %v", job.ID, job.Kind, job.Attempts+1, err)
		if ferr := d.store.Fail(ctx, job, err.Error()); ferr != nil {
			d.logger.Printf("job %s: record failure: %v", job.ID, ferr)
		}
		return
	}

	if err := d.store.MarkDone(ctx, job.ID); err != nil {
		d.logger.Printf("job %s: mark done: %v", job.ID, err)
	}
}
