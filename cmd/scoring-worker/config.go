package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"codearena/internal/common/cache"
	"codearena/internal/common/db"
	"codearena/internal/common/mq"
	"codearena/internal/scoring/service"
	"codearena/pkg/utils/logger"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8082"
	defaultShutdownTimeout = 10 * time.Second
)

// KafkaConfig holds broker and subscription settings.
type KafkaConfig struct {
	Brokers         []string      `yaml:"brokers"`
	ClientID        string        `yaml:"clientID"`
	ScoringTopic    string        `yaml:"scoringTopic"`
	ConsumerGroup   string        `yaml:"consumerGroup"`
	Workers         int           `yaml:"workers"`
	MaxRetries      int           `yaml:"maxRetries"`
	RetryDelay      time.Duration `yaml:"retryDelay"`
	ReconnectDelay  time.Duration `yaml:"reconnectDelay"`
	DeadLetterTopic string        `yaml:"deadLetterTopic"`
	DialTimeout     time.Duration `yaml:"dialTimeout"`
}

// AppConfig holds scoring-worker config.
type AppConfig struct {
	Addr     string            `yaml:"addr"`
	Logger   logger.Config     `yaml:"logger"`
	Kafka    KafkaConfig       `yaml:"kafka"`
	Database db.MySQLConfig    `yaml:"database"`
	Redis    cache.RedisConfig `yaml:"redis"`
	Scoring  service.Config    `yaml:"scoring"`
}

func loadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Kafka.ScoringTopic == "" {
		cfg.Kafka.ScoringTopic = "contest.scoring"
	}
	if cfg.Kafka.Workers <= 0 {
		cfg.Kafka.Workers = 4
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultHTTPAddr
	}
	return &cfg, nil
}

func (k KafkaConfig) toMQConfig() mq.KafkaConfig {
	return mq.KafkaConfig{
		Brokers:     k.Brokers,
		ClientID:    k.ClientID,
		DialTimeout: k.DialTimeout,
	}
}
