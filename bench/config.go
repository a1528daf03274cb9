// Package bench times key generation, signing and verification over a list
// of parameter sets and reports averages and artifact sizes.
package bench

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"paepcke.de/sphincsplus"
)

// Config drives one benchmark run.
type Config struct {
	ParameterSets []string `json:"parameter_sets"`
	Iterations    int      `json:"iterations"`
	Message       string   `json:"message"`
	Backend       string   `json:"backend"`
	Threads       int      `json:"threads"`
	LogLevel      string   `json:"log_level"`
	MetricsAddr   string   `json:"metrics_addr"`
	HistoryPath   string   `json:"history_path"`
}

const (
	BackendNative    = "native"
	BackendReference = "reference"
)

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedBackends = map[string]struct{}{
	BackendNative:    {},
	BackendReference: {},
}

func DefaultConfig() Config {
	return Config{
		ParameterSets: []string{
			"SLH-DSA-SHA2-128s",
			"SLH-DSA-SHA2-128f",
			"SLH-DSA-SHA2-192s",
			"SLH-DSA-SHA2-192f",
			"SLH-DSA-SHA2-256s",
			"SLH-DSA-SHA2-256f",
		},
		Iterations: 10,
		Message:    "The quick brown fox jumps over the lazy dog",
		Backend:    BackendNative,
		Threads:    1,
		LogLevel:   "info",
	}
}

// NormalizeSets splits comma separated tokens and drops blanks and repeats.
func NormalizeSets(raw ...string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		for _, s := range strings.Split(token, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func ValidateConfig(cfg Config) error {
	if len(cfg.ParameterSets) == 0 {
		return errors.New("parameter_sets is required")
	}
	for _, name := range cfg.ParameterSets {
		if _, err := sphincsplus.ParameterSetByName(name); err != nil {
			return fmt.Errorf("invalid parameter set %q: %w", name, err)
		}
	}
	if cfg.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if cfg.Iterations > 100000 {
		return errors.New("iterations must be <= 100000")
	}
	if _, ok := allowedBackends[strings.ToLower(strings.TrimSpace(cfg.Backend))]; !ok {
		return fmt.Errorf("invalid backend %q", cfg.Backend)
	}
	if cfg.Threads < 0 {
		return errors.New("threads must be >= 0")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	return nil
}

// LoadConfig reads a JSON file over DefaultConfig. Fields missing from the
// file keep their default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
