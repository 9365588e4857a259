package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docstruct/internal/convert"
)

// Worker converts one job at a time. Each conversion builds with its own
// state, so workers share nothing but the job store and stats.
type Worker struct {
	conv  *convert.Converter
	stats *Stats
	log   *slog.Logger
}

func NewWorker(conv *convert.Converter, stats *Stats, log *slog.Logger) *Worker {
	return &Worker{conv: conv, stats: stats, log: log}
}

// Process runs the conversion for a job and records its outcome.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusConverting, "converting")
	res, err := w.conv.Convert(ctx, bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "converting")
		w.stats.Record(Outcome{Failed: true})
		return
	}
	if job.Title != "" {
		res.Document.Name = job.Title
	}
	job.SetResult(res)

	w.stats.Record(Outcome{
		Format:     res.Format,
		DurationMs: res.Duration.Milliseconds(),
		Warnings:   len(res.Warnings),
		Failed:     res.ParseError != nil,
	})

	if res.ParseError != nil {
		job.AddError(fmt.Sprintf("parse: %s", res.ParseError))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}
