package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docstruct/internal/config"
	"github.com/dgallion1/docstruct/internal/convert"
	"github.com/dgallion1/docstruct/internal/parser"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator manages the asynchronous conversion pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	conv  *convert.Converter
	stats *Stats
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline; call Start to run workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	conv := convert.New(convert.Options{
		Parser:    parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		Structure: cfg.StructureOptions(),
		Logger:    log,
	})
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		conv:  conv,
		stats: NewStats(cfg.StatsWindow),
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.conv, o.stats, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// SubmitBatch queues jobs under a shared batch id. errs[i] is the submit
// error of jobs[i], nil when it was queued.
func (o *Orchestrator) SubmitBatch(jobs []*Job) (batchID string, errs []error) {
	batchID = uuid.NewString()
	errs = make([]error, len(jobs))
	for i, job := range jobs {
		job.BatchID = batchID
		if err := o.Submit(job); err != nil {
			o.log.Warn("batch job rejected", "job_id", job.ID, "batch_id", batchID, "error", err)
			errs[i] = err
		}
	}
	return batchID, errs
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// ActiveJobs returns the number of jobs still held in the store.
func (o *Orchestrator) ActiveJobs() int {
	return o.jobs.Len()
}

// Converter returns the converter for synchronous use by API handlers.
func (o *Orchestrator) Converter() *convert.Converter {
	return o.conv
}

// Stats returns the conversion stats shared by workers and API handlers.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}
