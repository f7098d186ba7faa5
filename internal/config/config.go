// Package config assembles the wizard configuration from code defaults, an
// optional YAML file, a .env file and the process environment, in that order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/autosave"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/submit"
)

// ErrInvalid reports a configuration that fails validation.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Environment string         `yaml:"environment" env:"FORMWIZARD_ENV"`
	Store       StoreConfig    `yaml:"store"`
	Autosave    AutosaveConfig `yaml:"autosave"`
	Submit      SubmitConfig   `yaml:"submit"`
	Form        FormConfig     `yaml:"form"`
	Log         LogConfig      `yaml:"log"`
}

type StoreConfig struct {
	// Driver is one of memory, file, sqlite, redis.
	Driver string      `yaml:"driver" env:"FORMWIZARD_STORE_DRIVER"`
	Path   string      `yaml:"path" env:"FORMWIZARD_STORE_PATH"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"FORMWIZARD_REDIS_ADDR"`
	Password string `yaml:"password" env:"FORMWIZARD_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"FORMWIZARD_REDIS_DB"`
	Prefix   string `yaml:"prefix" env:"FORMWIZARD_REDIS_PREFIX"`
}

type AutosaveConfig struct {
	QuietPeriod time.Duration `yaml:"quiet_period" env:"FORMWIZARD_AUTOSAVE_QUIET"`
}

type SubmitConfig struct {
	// Endpoint switches from the simulated submitter to HTTP when set.
	Endpoint        string        `yaml:"endpoint" env:"FORMWIZARD_SUBMIT_ENDPOINT"`
	Timeout         time.Duration `yaml:"timeout" env:"FORMWIZARD_SUBMIT_TIMEOUT"`
	MaxAttempts     int           `yaml:"max_attempts" env:"FORMWIZARD_SUBMIT_MAX_ATTEMPTS"`
	InitialInterval time.Duration `yaml:"initial_interval" env:"FORMWIZARD_SUBMIT_INITIAL_INTERVAL"`
	MaxInterval     time.Duration `yaml:"max_interval" env:"FORMWIZARD_SUBMIT_MAX_INTERVAL"`
	SimulatedDelay  time.Duration `yaml:"simulated_delay" env:"FORMWIZARD_SUBMIT_SIMULATED_DELAY"`
}

type FormConfig struct {
	// ExpectedFields is the denominator of the saved progress estimate.
	ExpectedFields int `yaml:"expected_fields" env:"FORMWIZARD_EXPECTED_FIELDS"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"FORMWIZARD_LOG_LEVEL"`
	Format string `yaml:"format" env:"FORMWIZARD_LOG_FORMAT"` // json, text
	Output string `yaml:"output" env:"FORMWIZARD_LOG_OUTPUT"` // stdout, stderr or a file path
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Environment: "development",
		Store: StoreConfig{
			Driver: storage.DriverFile,
			Path:   "formwizard.json",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "formwizard",
			},
		},
		Autosave: AutosaveConfig{QuietPeriod: autosave.DefaultQuietPeriod},
		Submit: SubmitConfig{
			Timeout:         submit.DefaultAttemptTimeout,
			MaxAttempts:     submit.DefaultMaxAttempts,
			InitialInterval: submit.DefaultInitialInterval,
			MaxInterval:     submit.DefaultMaxInterval,
			SimulatedDelay:  submit.DefaultSimulatedDelay,
		},
		Form: FormConfig{ExpectedFields: storage.DefaultExpectedFields},
		Log: LogConfig{
			Level:  "WARN",
			Format: "text",
			Output: "stderr",
		},
	}
}

type loadOptions struct {
	file    string
	dotenv  []string
	environ map[string]string
}

// Option configures Load.
type Option func(*loadOptions)

// WithFile reads a YAML file on top of the defaults. The file must exist.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.file = strings.TrimSpace(path)
	}
}

// WithDotEnv replaces the .env files consulted. Missing files are skipped.
func WithDotEnv(paths ...string) Option {
	return func(o *loadOptions) {
		o.dotenv = append([]string(nil), paths...)
	}
}

// WithEnviron reads variables from environ instead of the process
// environment. .env values are merged underneath it.
func WithEnviron(environ map[string]string) Option {
	return func(o *loadOptions) {
		o.environ = environ
	}
}

// Load builds a validated Config.
func Load(opts ...Option) (Config, error) {
	o := loadOptions{dotenv: []string{".env"}}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}

	cfg := Default()
	if o.file != "" {
		data, err := os.ReadFile(o.file)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", o.file, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", o.file, err)
		}
	}

	parseOpts, err := o.envOptions()
	if err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg, parseOpts...); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (o loadOptions) envOptions() ([]env.Options, error) {
	var files []string
	for _, path := range o.dotenv {
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}

	if o.environ == nil {
		if len(files) > 0 {
			if err := godotenv.Load(files...); err != nil {
				return nil, fmt.Errorf("config: load dotenv: %w", err)
			}
		}
		return nil, nil
	}

	merged := make(map[string]string, len(o.environ))
	if len(files) > 0 {
		values, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("config: read dotenv: %w", err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	for k, v := range o.environ {
		merged[k] = v
	}
	return []env.Options{{Environment: merged}}, nil
}

// Validate checks the values Load cannot default.
func (c Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case storage.DriverMemory, storage.DriverFile, storage.DriverSQLite, storage.DriverRedis:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
	}
	if needsPath(c.Store.Driver) && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("%w: store path required for driver %q", ErrInvalid, c.Store.Driver)
	}
	if strings.EqualFold(c.Store.Driver, storage.DriverRedis) && c.Store.Redis.Addr == "" {
		return fmt.Errorf("%w: redis addr required", ErrInvalid)
	}
	if c.Autosave.QuietPeriod <= 0 {
		return fmt.Errorf("%w: autosave quiet period must be positive", ErrInvalid)
	}
	if c.Submit.MaxAttempts <= 0 {
		return fmt.Errorf("%w: submit max attempts must be positive", ErrInvalid)
	}
	if c.Form.ExpectedFields <= 0 {
		return fmt.Errorf("%w: expected fields must be positive", ErrInvalid)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// StoreOptions maps the store section onto storage.OpenOptions.
func (c Config) StoreOptions() storage.OpenOptions {
	return storage.OpenOptions{
		Driver: c.Store.Driver,
		Path:   c.Store.Path,
		Redis: storage.RedisOptions{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
		},
	}
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func needsPath(driver string) bool {
	switch strings.ToLower(driver) {
	case storage.DriverFile, storage.DriverSQLite:
		return true
	}
	return false
}
