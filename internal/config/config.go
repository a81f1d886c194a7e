package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vadimbarashkov/phishing-detector/internal/analyzer"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const maxBatchItems = 10000

type Config struct {
	Env        string          `yaml:"env"`
	HTTPServer HTTPServer      `yaml:"http_server"`
	Storage    Storage         `yaml:"storage"`
	Postgres   Postgres        `yaml:"postgres"`
	SQLite     SQLite          `yaml:"sqlite"`
	Analyzer   analyzer.Config `yaml:"analyzer"`
	Batch      Batch           `yaml:"batch"`
	Log        Log             `yaml:"log"`
	Metrics    Metrics         `yaml:"metrics"`
	CORS       CORS            `yaml:"cors"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8000,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   30 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
	MaxUploadBytes: 10 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Storage selects the analysis store backend.
type Storage struct {
	Driver string `yaml:"driver"`
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type SQLite struct {
	Path string `yaml:"path"`
}

type Batch struct {
	MaxItems int `yaml:"max_items"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// Validate reports every setting that cannot be served.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvDev, EnvStage, EnvProd:
	default:
		errs = append(errs, fmt.Errorf("unknown env %q", c.Env))
	}

	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	case DriverSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Batch.MaxItems < 1 || c.Batch.MaxItems > maxBatchItems {
		errs = append(errs, fmt.Errorf("batch.max_items must be within [1, %d]", maxBatchItems))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}

	if c.Metrics.Enabled && (c.Metrics.Path == "" || c.Metrics.Path[0] != '/') {
		errs = append(errs, errors.New("metrics.path must start with /"))
	}

	if c.HTTPServer.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("http_server.max_upload_bytes must be positive"))
	}

	if err := c.Analyzer.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.HTTPServer = defaultHTTPServer
	cfg.Storage = Storage{Driver: DriverSQLite}
	cfg.Postgres = defaultPostgres
	cfg.SQLite = SQLite{Path: "phishing_detector.db"}
	cfg.Analyzer = analyzer.DefaultConfig()
	cfg.Batch = Batch{MaxItems: 100}
	cfg.Log = Log{Level: "info"}
	cfg.Metrics = Metrics{Enabled: true, Path: "/metrics"}
	cfg.CORS = CORS{AllowedOrigins: []string{"*"}}
}
