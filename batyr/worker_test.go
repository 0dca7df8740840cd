// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureConnectionSetsWaitMessage(t *testing.T) {
	// Port 1 on localhost refuses connections immediately, so every
	// reconnect attempt fails fast and the retry loop spins until the
	// context expires.
	cfg := &ServiceConfig{
		DatabaseURL:   "postgres://127.0.0.1:1/batyr?connect_timeout=1",
		ReconnectWait: 10 * time.Millisecond,
		Layers: []Layer{
			{Name: "roads", Source: "mem://roads", SourceLayer: "roads", TargetTable: "roads"},
		},
	}
	w := NewWorker(0, cfg, NewJobQueue(1), slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	job := NewJob("roads", "")
	job.SetStatus(StatusInProcess)
	err := w.ensureConnection(ctx, job)
	require.ErrorIs(t, err, ErrWorker)
	assert.Equal(t, "waiting to acquire a database connection", job.Snapshot().Message)
}

func TestEnsureConnectionClearsMessage(t *testing.T) {
	dsn := os.Getenv("BATYR_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BATYR_TEST_DATABASE_URL not set, skipping integration test")
	}
	cfg := &ServiceConfig{
		DatabaseURL:   dsn,
		ReconnectWait: 10 * time.Millisecond,
	}
	w := NewWorker(0, cfg, NewJobQueue(1), slog.Default())
	t.Cleanup(func() { w.db.close(context.Background()) })

	job := NewJob("roads", "")
	job.SetStatus(StatusInProcess)
	job.SetMessage("waiting to acquire a database connection")

	require.NoError(t, w.ensureConnection(context.Background(), job))
	assert.Equal(t, "", job.Snapshot().Message)
}
