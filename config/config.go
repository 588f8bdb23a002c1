// Package config loads qtermsim settings and builds the logger.
package config

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"qtermsim/backend"
	"qtermsim/quantum"
)

// Config holds run defaults. Zero Seed means a time-derived seed.
type Config struct {
	Qubits      int     `yaml:"qubits"`
	Shots       int     `yaml:"shots"`
	NoiseLevel  float64 `yaml:"noise_level"`
	Seed        uint64  `yaml:"seed"`
	Backend     string  `yaml:"backend"`
	Parallelism int     `yaml:"parallelism"`
	LogFile     string  `yaml:"log_file"`
	LogLevel    string  `yaml:"log_level"`

	// LogMaxSizeMB rotates LogFile once it grows past this size.
	LogMaxSizeMB  int `yaml:"log_max_size_mb"`
	LogMaxBackups int `yaml:"log_max_backups"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Qubits:        4,
		Shots:         1024,
		NoiseLevel:    0.01,
		Seed:          0,
		Backend:       "simulator",
		Parallelism:   4,
		LogFile:       "qtermsim.log",
		LogLevel:      "info",
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
	}
}

// Load overlays the YAML file at path on Default. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks every field against the simulator's limits.
func (c Config) Validate() error {
	if c.Qubits < 1 || c.Qubits > quantum.MaxQubits {
		return errors.Wrapf(quantum.ErrInvalidQubitCount, "config qubits %d", c.Qubits)
	}
	if c.Shots <= 0 {
		return errors.Wrapf(quantum.ErrInvalidShotCount, "config shots %d", c.Shots)
	}
	if err := quantum.CheckNoiseLevel(c.NoiseLevel); err != nil {
		return errors.Wrap(err, "config noise_level")
	}
	if _, err := backend.Lookup(c.Backend); err != nil {
		return err
	}
	if c.Parallelism < 1 {
		return errors.Errorf("config parallelism %d must be positive", c.Parallelism)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "config log_level")
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 {
		return errors.Errorf("config log rotation limits must not be negative")
	}
	return nil
}

// NewLogger builds a JSON zap logger writing to LogFile through a rotating
// lumberjack writer. The terminal is owned by the UI, so nothing goes to
// stderr. An empty LogFile disables logging.
func (c Config) NewLogger() (*zap.Logger, error) {
	if c.LogFile == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), sink, level)
	return zap.New(core, zap.AddCaller()), nil
}
