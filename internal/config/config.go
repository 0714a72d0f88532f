package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Review   ReviewConfig   `mapstructure:"review"   validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the schedule store backend.
// For postgres URL is a connection string, for sqlite a file path.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

// AuthConfig defines bearer token settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// ReviewConfig defines review session behaviour.
type ReviewConfig struct {
	DefaultLimit         int  `mapstructure:"default_limit"          validate:"gte=0"`
	RequeueAgain         bool `mapstructure:"requeue_again"`
	SessionTTLMinutes    int  `mapstructure:"session_ttl_minutes"    validate:"required,gt=0"`
	SweepIntervalSeconds int  `mapstructure:"sweep_interval_seconds" validate:"required,gt=0"`
}

// SessionTTL returns the idle lifetime of an in-memory session.
func (c ReviewConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// SweepInterval returns how often expired sessions are discarded.
func (c ReviewConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// TaskConfig sizes the background persistence workers.
type TaskConfig struct {
	WorkerCount           int `mapstructure:"worker_count"            validate:"required,gt=0"`
	QueueSize             int `mapstructure:"queue_size"              validate:"required,gt=0"`
	PersistTimeoutSeconds int `mapstructure:"persist_timeout_seconds" validate:"required,gt=0"`
}

// PersistTimeout bounds a single schedule state write.
func (c TaskConfig) PersistTimeout() time.Duration {
	return time.Duration(c.PersistTimeoutSeconds) * time.Second
}

// RewardsConfig points session summaries at the external rewards system.
// An empty WebhookURL logs summaries instead of posting them.
type RewardsConfig struct {
	WebhookURL     string `mapstructure:"webhook_url"     validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// Timeout bounds a single webhook delivery.
func (c RewardsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
