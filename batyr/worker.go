// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"context"
	"fmt"
	"log/slog"
)

// Worker pops jobs from the queue and runs pulls on its own database
// connection.
type Worker struct {
	id     int
	db     *database
	queue  *JobQueue
	config *ServiceConfig
	logger *slog.Logger
}

// NewWorker creates a worker with its own connection handle.
func NewWorker(id int, config *ServiceConfig, queue *JobQueue, logger *slog.Logger) *Worker {
	wl := logger.With("worker", id)
	return &Worker{
		id:     id,
		db:     newDatabase(config.DatabaseURL, wl),
		queue:  queue,
		config: config,
		logger: wl,
	}
}

// ensureConnection blocks until the worker's connection is usable. The
// first failed attempt surfaces on the job so a stalled queue is
// explicable from the outside.
func (w *Worker) ensureConnection(ctx context.Context, job *Job) error {
	first := true
	for {
		err := w.db.reconnect(ctx)
		if err == nil {
			job.SetMessage("")
			return nil
		}
		if first {
			job.SetMessage("waiting to acquire a database connection")
			first = false
		}
		w.logger.Warn("database connection failed, retrying",
			"error", err, "wait", w.config.ReconnectWait)
		if err := sleepWithContext(ctx, w.config.ReconnectWait); err != nil {
			return fmt.Errorf("%w: shutdown while waiting for a database connection", ErrWorker)
		}
	}
}

// Run processes jobs until the queue is closed and drained. Failures
// attributable to a job mark it failed and the worker continues;
// anything else stops the worker.
func (w *Worker) Run(ctx context.Context) error {
	defer w.db.close(context.Background())
	w.logger.Debug("worker started")
	for {
		job, ok := w.queue.Pop(ctx)
		if !ok {
			w.logger.Debug("worker stopping")
			return nil
		}
		job.SetStatus(StatusInProcess)
		w.logger.Info("job started", "job", job.ID(), "layer", job.LayerName())

		if err := w.ensureConnection(ctx, job); err != nil {
			job.Fail(err.Error())
			continue
		}

		layer, found := w.config.Layer(job.LayerName())
		if !found {
			err := fmt.Errorf("%w: %q", ErrUnknownLayer, job.LayerName())
			w.logger.Error("job failed", "job", job.ID(), "error", err)
			job.Fail(err.Error())
			continue
		}

		if err := pull(ctx, w.db, layer, job, w.logger); err != nil {
			w.logger.Error("job failed", "job", job.ID(), "layer", layer.Name, "error", err)
			job.Fail(err.Error())
			if !isRecoverable(err) {
				return err
			}
		}
	}
}
