// Package config loads the operator CLI configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"codearena/internal/common/storage"
)

// Config holds the endpoints the CLI talks to.
type Config struct {
	// ExecutionAddr is the execution worker HTTP base URL.
	ExecutionAddr string `yaml:"executionAddr"`
	// LeaderboardAddr is the leaderboard service HTTP base URL.
	LeaderboardAddr string `yaml:"leaderboardAddr"`

	KafkaBrokers     []string `yaml:"kafkaBrokers"`
	SubmissionsTopic string   `yaml:"submissionsTopic"`

	MinIO storage.MinIOConfig `yaml:"minio"`
}

// Load reads the config file and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file failed: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file failed: %w", err)
		}
	}
	if cfg.ExecutionAddr == "" {
		cfg.ExecutionAddr = "http://127.0.0.1:8081"
	}
	if cfg.LeaderboardAddr == "" {
		cfg.LeaderboardAddr = "http://127.0.0.1:8083"
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"127.0.0.1:9092"}
	}
	if cfg.SubmissionsTopic == "" {
		cfg.SubmissionsTopic = "contest.submissions"
	}
	return &cfg, nil
}
