package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Snapshot struct {
		// Cron schedules the periodic flush of dirty snapshots.
		Cron string `yaml:"cron"`
		// RPS and Burst bound how often mutations may write snapshots
		// inline; writes beyond the budget are coalesced until the next
		// scheduled flush.
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"snapshot"`
	Metrics struct {
		// Addr, when set, exposes Prometheus metrics on this address.
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text|json
	} `yaml:"logging"`
	Validation struct {
		MaxContentLen int   `yaml:"max_content_len"`
		MaxImageLen   int   `yaml:"max_image_len"`
		RequireBody   *bool `yaml:"require_body"`
	} `yaml:"validation"`
}

// Effective is the merged result of config file, environment and flags,
// carried through startup.
type Effective struct {
	Config      *Config
	DBPath      string
	MetricsAddr string
	Source      string
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (dbPath, cfgPath, metricsAddr string, setFlags map[string]bool) {
	dbPtr := flag.String("db", "./.parley", "snapshot DB path")
	cfgPtr := flag.String("config", "./config.yaml", "path to config file")
	metricsPtr := flag.String("metrics-addr", "", "expose Prometheus metrics on this address (empty disables)")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *dbPtr, *cfgPtr, *metricsPtr, setFlags
}

// LoadEnvOverrides applies PARLEY_* environment overrides onto cfg and
// reports whether any were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	if v := os.Getenv("PARLEY_DB_PATH"); v != "" {
		envUsed = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("PARLEY_SNAPSHOT_CRON"); v != "" {
		envUsed = true
		cfg.Snapshot.Cron = v
	}
	if v := os.Getenv("PARLEY_SNAPSHOT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Snapshot.RPS = f
		}
	}
	if v := os.Getenv("PARLEY_SNAPSHOT_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Snapshot.Burst = n
		}
	}
	if v := os.Getenv("PARLEY_METRICS_ADDR"); v != "" {
		envUsed = true
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("PARLEY_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PARLEY_LOG_FORMAT"); v != "" {
		envUsed = true
		cfg.Logging.Format = v
	}
	return envUsed
}

// LoadEffective loads config from the given path and applies environment
// overrides. A missing file is not an error; env and defaults still apply.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and PARLEY_CONFIG when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("PARLEY_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
