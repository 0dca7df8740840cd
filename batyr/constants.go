// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import "time"

const (
	// AppName is the daemon name used in logs and token claims.
	AppName = "batyrd"

	// Version of the daemon.
	Version = "0.1.0"
)

// Job lifecycle states.
const (
	StatusQueued    = "QUEUED"
	StatusInProcess = "IN_PROCESS"
	StatusFinished  = "FINISHED"
	StatusFailed    = "FAILED"
)

const (
	DefaultWorkerCount   = 2
	DefaultQueueCapacity = 64
	DefaultReconnectWait = 2 * time.Second
	DefaultJobRetention  = 10 * time.Minute
)

// scratchTablePrefix prefixes the per-job temporary table name.
const scratchTablePrefix = "batyr_"
