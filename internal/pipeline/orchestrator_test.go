package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/docstruct/internal/config"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.WorkerCount = 2
	cfg.MaxQueueSize = 4
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := job.Snapshot(); snap.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_ConvertsJobs(t *testing.T) {
	o := NewOrchestrator(testConfig(), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("notes.md", "Renamed", []byte("# Notes\n\n## Part\n\nbody text\n"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap := waitDone(t, job)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Nodes != 3 {
		t.Errorf("expected 3 nodes, got %d", snap.Progress.Nodes)
	}
	res := job.Result()
	if res == nil || res.Document.Name != "Renamed" {
		t.Fatalf("expected title override on result, got %+v", res)
	}
	if o.GetJob(job.ID) != job {
		t.Error("expected job to be retrievable by id")
	}
	if got := o.Stats().Snapshot().ByFormat["md"]; got != 1 {
		t.Errorf("expected one md conversion in stats, got %d", got)
	}
}

func TestOrchestrator_ParseFailureKeepsEmptyResult(t *testing.T) {
	o := NewOrchestrator(testConfig(), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("broken.docx", "", []byte("not a zip archive"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap := waitDone(t, job)
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Fatalf("expected failed in parsing, got %s/%s", snap.Status, snap.Phase)
	}
	res := job.Result()
	if res == nil || !res.Document.IsEmpty() {
		t.Fatal("expected an empty document result")
	}
}

func TestOrchestrator_UnsupportedFormatFails(t *testing.T) {
	o := NewOrchestrator(testConfig(), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("deck.pptx", "", []byte("x"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := waitDone(t, job)
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", snap.Status)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected one error, got %v", snap.Progress.Errors)
	}
	if job.Result() != nil {
		t.Error("expected no result")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, discardLogger()) // not started: nothing drains the queue

	if err := o.Submit(NewJob("a.txt", "", []byte("a"))); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	rejected := NewJob("b.txt", "", []byte("b"))
	err := o.Submit(rejected)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if snap := rejected.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %s/%s", snap.Status, snap.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
	if o.ActiveJobs() != 2 {
		t.Errorf("expected 2 tracked jobs, got %d", o.ActiveJobs())
	}
}

func TestOrchestrator_SubmitBatch(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 2
	o := NewOrchestrator(cfg, discardLogger())

	jobs := []*Job{
		NewJob("a.txt", "", []byte("a")),
		NewJob("b.txt", "", []byte("b")),
		NewJob("c.txt", "", []byte("c")),
	}
	batchID, errs := o.SubmitBatch(jobs)
	if batchID == "" {
		t.Fatal("expected a batch id")
	}
	if len(errs) != 3 {
		t.Fatalf("expected 3 submit results, got %d", len(errs))
	}
	if errs[0] != nil || errs[1] != nil {
		t.Errorf("expected the first two jobs queued, got %v, %v", errs[0], errs[1])
	}
	if !errors.Is(errs[2], ErrQueueFull) {
		t.Errorf("expected ErrQueueFull for the overflow job, got %v", errs[2])
	}
	for _, j := range jobs {
		if j.Snapshot().BatchID != batchID {
			t.Errorf("job %s: expected batch id %q", j.ID, batchID)
		}
	}
	if jobs[2].Snapshot().Status != StatusFailed {
		t.Error("expected the overflow job to fail")
	}
}
