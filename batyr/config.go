// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"fmt"
	"time"
)

// Layer maps a source layer onto a target table.
type Layer struct {
	// Name identifies the layer in job submissions.
	Name string `json:"name" mapstructure:"name"`

	// Description is free text shown in the layer listing.
	Description string `json:"description,omitempty" mapstructure:"description"`

	// Source locates the dataset, scheme-prefixed (for example
	// "mem://roads").
	Source string `json:"-" mapstructure:"source"`

	// SourceLayer names the layer inside the dataset.
	SourceLayer string `json:"-" mapstructure:"source_layer"`

	// TargetSchema and TargetTable address the table to reconcile into.
	// Identifiers must be lowercase; mixed-case targets are not
	// supported.
	TargetSchema string `json:"-" mapstructure:"target_schema"`
	TargetTable  string `json:"-" mapstructure:"target_table"`

	// AllowFilteredDelete permits the delete step to run for filtered
	// pulls. Without it a filtered pull would remove every target row
	// outside the filter window.
	AllowFilteredDelete bool `json:"-" mapstructure:"allow_filtered_delete"`
}

// Validate checks the layer definition and applies the schema default.
func (l *Layer) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("layer has no name")
	}
	if l.Source == "" {
		return fmt.Errorf("layer %q has no source", l.Name)
	}
	if l.SourceLayer == "" {
		return fmt.Errorf("layer %q has no source layer", l.Name)
	}
	if l.TargetSchema == "" {
		l.TargetSchema = "public"
	}
	if !isValidSchemaName(l.TargetSchema) {
		return fmt.Errorf("layer %q: invalid target schema %q (lowercase letters, digits and underscores only)", l.Name, l.TargetSchema)
	}
	if !isValidTableName(l.TargetTable) {
		return fmt.Errorf("layer %q: invalid target table %q (lowercase letters, digits and underscores only)", l.Name, l.TargetTable)
	}
	return nil
}

// ServiceConfig carries the engine settings.
type ServiceConfig struct {
	// DatabaseURL is the connection string each worker dials.
	DatabaseURL string

	// WorkerCount is the number of concurrent pull workers.
	WorkerCount int

	// ReconnectWait paces the database reconnect loop.
	ReconnectWait time.Duration

	// QueueCapacity bounds the number of queued jobs.
	QueueCapacity int

	// JobRetention is how long finished jobs stay addressable.
	JobRetention time.Duration

	// Layers are the configured synchronization layers.
	Layers []Layer
}

func (c *ServiceConfig) applyDefaults() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = DefaultReconnectWait
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	if c.JobRetention <= 0 {
		c.JobRetention = DefaultJobRetention
	}
}

// Validate checks the whole configuration, including every layer.
func (c *ServiceConfig) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("no database URL configured")
	}
	seen := make(map[string]struct{}, len(c.Layers))
	for i := range c.Layers {
		layer := &c.Layers[i]
		if err := layer.Validate(); err != nil {
			return err
		}
		if _, dup := seen[layer.Name]; dup {
			return fmt.Errorf("duplicate layer name %q", layer.Name)
		}
		seen[layer.Name] = struct{}{}
	}
	return nil
}

// Layer returns the layer with the given name.
func (c *ServiceConfig) Layer(name string) (*Layer, bool) {
	for i := range c.Layers {
		if c.Layers[i].Name == name {
			return &c.Layers[i], true
		}
	}
	return nil, false
}
