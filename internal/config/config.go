package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Config 描述了 SmartMailr 在启动阶段需要加载的核心配置。
type Config struct {
	Server  ServerConfig  `json:"server"`
	Inbox   InboxConfig   `json:"inbox"`
	Triage  TriageConfig  `json:"triage"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig 控制 API 服务的监听地址等参数。
type ServerConfig struct {
	Address string `json:"address"`
}

// InboxConfig 统一描述作业存储与队列后端的配置信息。
type InboxConfig struct {
	Store      StoreConfig `json:"store"`
	Queue      QueueConfig `json:"queue"`
	Workers    int         `json:"workers"`
	MaxRetries int         `json:"max_retries"`
	SeedPath   string      `json:"seed_path"`
}

// StoreConfig 目前提供内存实现，driver 字段为后续扩展预留。
type StoreConfig struct {
	Driver string `json:"driver"`
}

// QueueConfig 选择作业队列的实现方式。
type QueueConfig struct {
	Driver   string         `json:"driver"`
	Buffer   int            `json:"buffer"`
	Redis    RedisConfig    `json:"redis"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
}

// RedisConfig 包含访问 Redis 所需的连接参数。
type RedisConfig struct {
	Address      string `json:"address"`
	Password     string `json:"password"`
	DB           int    `json:"db"`
	Queue        string `json:"queue"`
	BlockWaitSec int    `json:"block_wait_seconds"`
}

// RabbitMQConfig 包含访问 RabbitMQ 所需的连接参数。
type RabbitMQConfig struct {
	URL        string `json:"url"`
	Queue      string `json:"queue"`
	Prefetch   int    `json:"prefetch"`
	Durable    bool   `json:"durable"`
	AutoDelete bool   `json:"auto_delete"`
}

// TriageConfig 用于配置分诊流水线的行为。
type TriageConfig struct {
	RulesPath string `json:"rules_path"`
}

// LoggingConfig 控制日志输出的级别与格式。
type LoggingConfig struct {
	Level     string      `json:"level"`
	Format    string      `json:"format"`
	Output    string      `json:"output"`
	AuditFile AuditConfig `json:"audit"`
}

// AuditConfig 控制审计日志的落盘位置与滚动策略。
type AuditConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// RedisBlockWait 返回 Redis 队列的阻塞等待时间。
func (c RedisConfig) RedisBlockWait() time.Duration {
	if c.BlockWaitSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.BlockWaitSec) * time.Second
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))

	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Inbox.Store.Driver == "" {
		c.Inbox.Store.Driver = "memory"
	}
	if c.Inbox.Queue.Driver == "" {
		c.Inbox.Queue.Driver = "memory"
	}
	if c.Inbox.Queue.Buffer <= 0 {
		c.Inbox.Queue.Buffer = 256
	}
	if c.Inbox.Workers <= 0 {
		c.Inbox.Workers = 4
	}
	if c.Inbox.MaxRetries <= 0 {
		c.Inbox.MaxRetries = 3
	}

	if c.Inbox.SeedPath != "" && !filepath.IsAbs(c.Inbox.SeedPath) {
		c.Inbox.SeedPath = filepath.Join(baseDir, c.Inbox.SeedPath)
	}

	if c.Triage.RulesPath != "" && !filepath.IsAbs(c.Triage.RulesPath) {
		c.Triage.RulesPath = filepath.Join(baseDir, c.Triage.RulesPath)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Logging.AuditFile.Path != "" && !filepath.IsAbs(c.Logging.AuditFile.Path) {
		c.Logging.AuditFile.Path = filepath.Join(baseDir, c.Logging.AuditFile.Path)
	}
}
