// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service ties the queue, the job list and the worker pool together and
// is the single entry point for job submission and lookup.
type Service struct {
	config *ServiceConfig
	queue  *JobQueue
	jobs   *JobList
	logger *slog.Logger

	mu          sync.Mutex
	group       *errgroup.Group
	cancel      context.CancelFunc
	stopJanitor context.CancelFunc
	closed      bool
}

// NewService validates the configuration and builds the engine.
func NewService(config *ServiceConfig, logger *slog.Logger) (*Service, error) {
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Service{
		config: config,
		queue:  NewJobQueue(config.QueueCapacity),
		jobs:   NewJobList(),
		logger: logger,
	}, nil
}

// Start launches the worker pool and the job list janitor.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workerCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(workerCtx)
	for i := 0; i < s.config.WorkerCount; i++ {
		w := NewWorker(i, s.config, s.queue, s.logger)
		group.Go(func() error {
			return w.Run(groupCtx)
		})
	}
	s.group = group
	s.cancel = cancel

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	s.stopJanitor = stopJanitor
	go s.runJanitor(janitorCtx)

	s.logger.Info("service started",
		"workers", s.config.WorkerCount,
		"queue_capacity", s.config.QueueCapacity,
		"layers", len(s.config.Layers),
	)
}

func (s *Service) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.config.JobRetention)
			if n := s.jobs.EvictFinishedBefore(cutoff); n > 0 {
				s.logger.Debug("evicted finished jobs", "count", n)
			}
		}
	}
}

// Submit queues a pull job for the named layer.
func (s *Service) Submit(layerName, filter string) (*Job, error) {
	if _, found := s.config.Layer(layerName); !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, layerName)
	}
	job := NewJob(layerName, filter)
	s.jobs.Add(job)
	if err := s.queue.Push(job); err != nil {
		s.jobs.Remove(job.ID())
		return nil, err
	}
	s.logger.Info("job queued", "job", job.ID(), "layer", layerName, "filter", filter)
	return job, nil
}

// Lookup returns the job with the given id.
func (s *Service) Lookup(id string) (*Job, bool) {
	return s.jobs.Get(id)
}

// Jobs returns snapshots of all tracked jobs, newest first.
func (s *Service) Jobs() []JobSnapshot {
	return s.jobs.Snapshots()
}

// Layers returns the configured layers.
func (s *Service) Layers() []Layer {
	return s.config.Layers
}

// Shutdown stops accepting jobs and waits for workers to drain the
// queue. If ctx expires first, workers are cancelled and the wait
// continues until they return.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	group := s.group
	cancel := s.cancel
	stopJanitor := s.stopJanitor
	s.mu.Unlock()

	s.queue.Close()
	if stopJanitor != nil {
		stopJanitor()
	}
	if group == nil {
		return nil
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- group.Wait()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		return <-done
	}
}
