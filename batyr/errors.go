// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import "errors"

// Error sentinels for mapping failures to their origin.
var (
	ErrUnknownLayer  = errors.New("unknown layer")
	ErrSource        = errors.New("source error")
	ErrIntrospection = errors.New("introspection error")
	ErrEncoding      = errors.New("encoding error")
	ErrDB            = errors.New("database error")
	ErrWorker        = errors.New("worker error")

	ErrQueueClosed = errors.New("queue closed")
	ErrQueueFull   = errors.New("queue full")
)

// isRecoverable reports whether a job failure leaves the worker able to
// continue with the next job.
func isRecoverable(err error) bool {
	return errors.Is(err, ErrUnknownLayer) ||
		errors.Is(err, ErrSource) ||
		errors.Is(err, ErrIntrospection) ||
		errors.Is(err, ErrEncoding) ||
		errors.Is(err, ErrDB) ||
		errors.Is(err, ErrWorker)
}
