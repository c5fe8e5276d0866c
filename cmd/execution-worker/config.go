package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"codearena/internal/common/db"
	"codearena/internal/common/mq"
	"codearena/internal/common/storage"
	"codearena/internal/judge/sandbox/engine"
	"codearena/internal/judge/service"
	"codearena/pkg/utils/logger"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8081"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// KafkaConfig holds broker and subscription settings.
type KafkaConfig struct {
	Brokers          []string      `yaml:"brokers"`
	ClientID         string        `yaml:"clientID"`
	SubmissionsTopic string        `yaml:"submissionsTopic"`
	ScoringTopic     string        `yaml:"scoringTopic"`
	ConsumerGroup    string        `yaml:"consumerGroup"`
	Workers          int           `yaml:"workers"`
	MaxRetries       int           `yaml:"maxRetries"`
	RetryDelay       time.Duration `yaml:"retryDelay"`
	ReconnectDelay   time.Duration `yaml:"reconnectDelay"`
	DeadLetterTopic  string        `yaml:"deadLetterTopic"`
	DialTimeout      time.Duration `yaml:"dialTimeout"`
}

// SandboxConfig holds sandbox engine settings.
type SandboxConfig struct {
	CgroupRoot           string `yaml:"cgroupRoot"`
	SeccompDir           string `yaml:"seccompDir"`
	HelperPath           string `yaml:"helperPath"`
	StdoutStderrMaxBytes int64  `yaml:"stdoutStderrMaxBytes"`
	EnableSeccomp        bool   `yaml:"enableSeccomp"`
	EnableCgroup         bool   `yaml:"enableCgroup"`
	EnableNamespaces     bool   `yaml:"enableNamespaces"`
}

// AppConfig holds execution-worker config.
type AppConfig struct {
	Server   ServerConfig        `yaml:"server"`
	Logger   logger.Config       `yaml:"logger"`
	Kafka    KafkaConfig         `yaml:"kafka"`
	Database db.MySQLConfig      `yaml:"database"`
	MinIO    storage.MinIOConfig `yaml:"minio"`
	Judge    service.Config      `yaml:"judge"`
	Sandbox  SandboxConfig       `yaml:"sandbox"`
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
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Kafka.SubmissionsTopic == "" {
		cfg.Kafka.SubmissionsTopic = "contest.submissions"
	}
	if cfg.Kafka.ScoringTopic == "" {
		cfg.Kafka.ScoringTopic = "contest.scoring"
	}
	if cfg.Kafka.Workers <= 0 {
		cfg.Kafka.Workers = 4
	}
	if cfg.Judge.WorkRoot == "" {
		cfg.Judge.WorkRoot = "/var/lib/codearena/work"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
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

func (s SandboxConfig) toEngineConfig() engine.Config {
	return engine.Config{
		CgroupRoot:           s.CgroupRoot,
		SeccompDir:           s.SeccompDir,
		HelperPath:           s.HelperPath,
		StdoutStderrMaxBytes: s.StdoutStderrMaxBytes,
		EnableSeccomp:        s.EnableSeccomp,
		EnableCgroup:         s.EnableCgroup,
		EnableNamespaces:     s.EnableNamespaces,
	}
}
