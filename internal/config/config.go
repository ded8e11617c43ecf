package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/koding/multiconfig"
)

// Modes select which components the server runs.
const (
	ModeAll    = ""
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Config defines the runbox server configuration
type Config struct {
	// server config
	HTTPAddr      string `flagUsage:"specifies the http binding address" default:":8080"`
	MonitorAddr   string `flagUsage:"specifies the metrics binding address" default:":8081"`
	Mode          string `flagUsage:"run only the api or the worker (both when empty)"`
	AuthToken     string `flagUsage:"bearer token auth for the REST API"`
	EnableMetrics bool   `flagUsage:"enable prometheus metrics endpoint"`

	// storage
	DatabaseURL   string        `flagUsage:"postgres connection string (async runs are disabled without it)"`
	RedisAddr     string        `flagUsage:"redis address for the status board (disabled when empty)" default:"localhost:6379"`
	RedisPassword string        `flagUsage:"redis password"`
	RedisDB       int           `flagUsage:"redis database number"`
	StatusTTL     time.Duration `flagUsage:"lifetime of a run status entry" default:"1h"`

	// judge0
	Judge0URL        string        `flagUsage:"judge0 base url" default:"http://judge0-server:2358"`
	Judge0AuthToken  string        `flagUsage:"X-Auth-Token sent to judge0"`
	RequestTimeout   time.Duration `flagUsage:"timeout of a single judge0 request" default:"30s"`
	PollInterval     time.Duration `flagUsage:"delay between status fetches" default:"1s"`
	MaxWait          time.Duration `flagUsage:"give up polling after this long" default:"2m"`
	TransportRetries int           `flagUsage:"extra attempts after a judge0 transport error"`
	RetryFloor       time.Duration `flagUsage:"first retry delay" default:"250ms"`
	RetryCeil        time.Duration `flagUsage:"maximum retry delay" default:"5s"`

	// worker
	WorkerConcurrency int           `flagUsage:"number of job polling loops" default:"5"`
	WorkerTick        time.Duration `flagUsage:"job polling interval" default:"500ms"`
	MaxAttempts       int           `flagUsage:"attempts per job before it is marked failed" default:"3"`

	// logger config
	Release bool `flagUsage:"release level of logs"`
	Silent  bool `flagUsage:"do not print logs"`
}

// Load reads a .env file if present, then loads config from tags,
// RUNBOX_ prefixed environment variables and args.
func (c *Config) Load(args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "RUNBOX",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "RUNBOX",
			Args:      args,
		},
	)
	if os.Getpid() == 1 {
		c.Release = true
	}
	if err := cl.Load(c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAll, ModeAPI, ModeWorker:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Judge0URL == "" {
		return errors.New("judge0 url is required")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.MaxWait < c.PollInterval {
		return fmt.Errorf("max wait %s is shorter than poll interval %s", c.MaxWait, c.PollInterval)
	}
	if c.Mode == ModeWorker && c.DatabaseURL == "" {
		return errors.New("worker mode requires a database url")
	}
	if c.TransportRetries < 0 {
		return errors.New("transport retries must not be negative")
	}
	if c.WorkerConcurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}
	return nil
}
