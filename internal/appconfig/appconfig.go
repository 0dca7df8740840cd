// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package appconfig

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/fasingagerda/batyr/batyr"
)

// LogConfig controls daemon logging.
type LogConfig struct {
	// File enables an additional rotated JSON log file when set.
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Config is the daemon configuration file.
type Config struct {
	Listen        string        `mapstructure:"listen"`
	DatabaseURL   string        `mapstructure:"database_url"`
	Workers       int           `mapstructure:"workers"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	QueueCapacity int           `mapstructure:"queue_capacity"`
	JobRetention  time.Duration `mapstructure:"job_retention"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	Log           LogConfig     `mapstructure:"log"`
	Layers        []batyr.Layer `mapstructure:"layers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":9090")
	v.SetDefault("workers", batyr.DefaultWorkerCount)
	v.SetDefault("reconnect_wait", "2s")
	v.SetDefault("queue_capacity", batyr.DefaultQueueCapacity)
	v.SetDefault("job_retention", "10m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config file %q: %w", path, err)
	}
	return &cfg, nil
}

// ServiceConfig converts the file configuration into engine settings.
func (c *Config) ServiceConfig() *batyr.ServiceConfig {
	return &batyr.ServiceConfig{
		DatabaseURL:   c.DatabaseURL,
		WorkerCount:   c.Workers,
		ReconnectWait: c.ReconnectWait,
		QueueCapacity: c.QueueCapacity,
		JobRetention:  c.JobRetention,
		Layers:        c.Layers,
	}
}
