package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/akashuv-21/parase/pkg/processor"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Evaluation struct {
		Mode             string   `yaml:"mode"`
		IgnoreClasses    []string `yaml:"ignore_classes"`
		StringsToRemove  []string `yaml:"strings_to_remove"`
		NormalizeUnicode bool     `yaml:"normalize_unicode"`
		Workers          int      `yaml:"workers"`
	} `yaml:"evaluation"`

	Table struct {
		IgnoreNodes []string `yaml:"ignore_nodes"`
	} `yaml:"table"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"database"`

	Server struct {
		Addr         string  `yaml:"addr"`
		RateLimit    float64 `yaml:"rate_limit"`
		Burst        int     `yaml:"burst"`
		MaxBodyBytes int64   `yaml:"max_body_bytes"`
	} `yaml:"server"`

	UI struct {
		Progress bool `yaml:"progress"`
		Color    bool `yaml:"color"`
	} `yaml:"ui"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"parase.yaml",
			"parase.yml",
			filepath.Join(os.Getenv("HOME"), ".config/parase/config.yaml"),
			"/etc/parase/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	// ui switches default to on; a file can only turn them off
	config := Config{}
	config.UI.Progress = true
	config.UI.Color = true
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	config.UI.Progress = true
	config.UI.Color = true
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Evaluation.Mode == "" {
		config.Evaluation.Mode = "layout"
	}
	if config.Evaluation.IgnoreClasses == nil {
		config.Evaluation.IgnoreClasses = processor.DefaultIgnoreClasses()
	}
	if config.Evaluation.StringsToRemove == nil {
		config.Evaluation.StringsToRemove = []string{"\n"}
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "evaluations"
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.RateLimit == 0 {
		config.Server.RateLimit = 5.0
	}
	if config.Server.Burst == 0 {
		config.Server.Burst = 10
	}
	if config.Server.MaxBodyBytes == 0 {
		config.Server.MaxBodyBytes = 64 << 20
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if workers := os.Getenv("PARASE_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			config.Evaluation.Workers = n
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Addr = ":" + port
	}
}
