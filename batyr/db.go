// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// database owns one exclusive connection for a worker. Workers never
// share connections, so the scratch temporary table stays session-local
// to the job that created it.
type database struct {
	connString string
	logger     *slog.Logger
	conn       *pgx.Conn
}

func newDatabase(connString string, logger *slog.Logger) *database {
	return &database{
		connString: connString,
		logger:     logger,
	}
}

// reconnect makes sure the connection is alive, dialing a new one when
// needed.
func (d *database) reconnect(ctx context.Context) error {
	if d.conn != nil && !d.conn.IsClosed() {
		if err := d.conn.Ping(ctx); err == nil {
			return nil
		}
		_ = d.conn.Close(ctx)
		d.conn = nil
	}
	conn, err := pgx.Connect(ctx, d.connString)
	if err != nil {
		return fmt.Errorf("%w: could not connect: %v", ErrDB, err)
	}
	d.conn = conn
	d.logger.Debug("database connection established")
	return nil
}

// begin starts a transaction on the worker's connection.
func (d *database) begin(ctx context.Context) (pgx.Tx, error) {
	if d.conn == nil {
		return nil, fmt.Errorf("%w: not connected", ErrDB)
	}
	return d.conn.Begin(ctx)
}

func (d *database) close(ctx context.Context) {
	if d.conn != nil {
		_ = d.conn.Close(ctx)
		d.conn = nil
	}
}

// sleepWithContext waits for the duration unless the context is
// cancelled first.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
