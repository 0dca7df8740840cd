// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatistics counts the work performed by a pull.
type JobStatistics struct {
	Pulled  int64 `json:"num_pulled"`
	Created int64 `json:"num_created"`
	Updated int64 `json:"num_updated"`
	Deleted int64 `json:"num_deleted"`
}

// Job is one synchronization request for a layer. All mutation goes
// through the setters, which serialize access and freeze the record once
// a terminal status is reached.
type Job struct {
	mu         sync.Mutex
	id         string
	layer      string
	filter     string
	status     string
	message    string
	stats      JobStatistics
	createdAt  time.Time
	finishedAt time.Time
}

// JobSnapshot is an immutable copy of a job for rendering.
type JobSnapshot struct {
	ID         string        `json:"id"`
	Layer      string        `json:"layer"`
	Filter     string        `json:"filter,omitempty"`
	Status     string        `json:"status"`
	Message    string        `json:"message,omitempty"`
	Statistics JobStatistics `json:"statistics"`
	CreatedAt  time.Time     `json:"created_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// NewJob creates a queued job with a fresh id.
func NewJob(layer, filter string) *Job {
	return &Job{
		id:        uuid.NewString(),
		layer:     layer,
		filter:    filter,
		status:    StatusQueued,
		createdAt: time.Now(),
	}
}

func (j *Job) ID() string        { return j.id }
func (j *Job) LayerName() string { return j.layer }
func (j *Job) Filter() string    { return j.filter }

func (j *Job) Status() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func isTerminal(status string) bool {
	return status == StatusFinished || status == StatusFailed
}

// SetStatus transitions the job. Transitions out of a terminal status are
// ignored. Entering a terminal status stamps the finish time.
func (j *Job) SetStatus(status string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.setStatusLocked(status)
}

func (j *Job) setStatusLocked(status string) {
	if isTerminal(j.status) {
		return
	}
	j.status = status
	if isTerminal(status) {
		j.finishedAt = time.Now()
	}
}

// SetMessage attaches a human-readable note to a running job.
func (j *Job) SetMessage(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if isTerminal(j.status) {
		return
	}
	j.message = message
}

// SetStatistics publishes intermediate counters while a job runs.
func (j *Job) SetStatistics(stats JobStatistics) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if isTerminal(j.status) {
		return
	}
	j.stats = stats
}

// Fail marks the job failed with the given message, atomically.
func (j *Job) Fail(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if isTerminal(j.status) {
		return
	}
	j.message = message
	j.setStatusLocked(StatusFailed)
}

// Finish publishes the final statistics together with the FINISHED
// status so readers never observe one without the other.
func (j *Job) Finish(stats JobStatistics) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if isTerminal(j.status) {
		return
	}
	j.stats = stats
	j.setStatusLocked(StatusFinished)
}

// CreatedAt returns the submission time.
func (j *Job) CreatedAt() time.Time { return j.createdAt }

// Snapshot returns a consistent copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:         j.id,
		Layer:      j.layer,
		Filter:     j.filter,
		Status:     j.status,
		Message:    j.message,
		Statistics: j.stats,
		CreatedAt:  j.createdAt,
	}
	if !j.finishedAt.IsZero() {
		t := j.finishedAt
		snap.FinishedAt = &t
	}
	return snap
}
