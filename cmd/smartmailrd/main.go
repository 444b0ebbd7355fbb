package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"SmartMailr/internal/api"
	"SmartMailr/internal/calendar"
	"SmartMailr/internal/config"
	"SmartMailr/internal/inbox"
	"SmartMailr/internal/intent"
	"SmartMailr/internal/mail"
	"SmartMailr/internal/mailer"
	"SmartMailr/internal/triage"
	"SmartMailr/pkg/logger"
)

// main 是 SmartMailr 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("smartmailrd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("SMARTMAILR_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "smartmailr.json")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{cfg.Logging.Output},
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.AuditFile.Path != "",
			Path:       cfg.Logging.AuditFile.Path,
			MaxSizeMB:  cfg.Logging.AuditFile.MaxSizeMB,
			MaxBackups: cfg.Logging.AuditFile.MaxBackups,
			MaxAgeDays: cfg.Logging.AuditFile.MaxAgeDays,
		},
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// 加载意图规则，未配置时使用内置规则表。
	rules := intent.DefaultRules()
	if cfg.Triage.RulesPath != "" {
		loaded, err := intent.LoadRules(cfg.Triage.RulesPath)
		if err != nil {
			return err
		}
		rules = loaded
	}

	orchestrator := triage.New(
		calendar.NewMock(),
		mailer.NewMock(),
		triage.WithClassifier(intent.NewClassifier(rules)),
	)

	var jobStore inbox.Store
	switch cfg.Inbox.Store.Driver {
	case "", "memory":
		jobStore = inbox.NewMemoryStore()
	default:
		return fmt.Errorf("未知的存储驱动: %s", cfg.Inbox.Store.Driver)
	}
	defer func() {
		_ = jobStore.Close()
	}()

	var jobQueue inbox.Queue
	switch cfg.Inbox.Queue.Driver {
	case "", "memory":
		jobQueue = inbox.NewMemoryQueue(cfg.Inbox.Queue.Buffer)
	case "redis":
		queue, err := inbox.NewRedisQueue(inbox.RedisQueueConfig{
			Address:   cfg.Inbox.Queue.Redis.Address,
			Password:  cfg.Inbox.Queue.Redis.Password,
			DB:        cfg.Inbox.Queue.Redis.DB,
			Queue:     cfg.Inbox.Queue.Redis.Queue,
			BlockWait: cfg.Inbox.Queue.Redis.RedisBlockWait(),
		})
		if err != nil {
			return err
		}
		jobQueue = queue
	case "rabbitmq":
		queue, err := inbox.NewRabbitMQQueue(inbox.RabbitMQConfig{
			URL:        cfg.Inbox.Queue.RabbitMQ.URL,
			Queue:      cfg.Inbox.Queue.RabbitMQ.Queue,
			Prefetch:   cfg.Inbox.Queue.RabbitMQ.Prefetch,
			Durable:    cfg.Inbox.Queue.RabbitMQ.Durable,
			AutoDelete: cfg.Inbox.Queue.RabbitMQ.AutoDelete,
		})
		if err != nil {
			return err
		}
		jobQueue = queue
	default:
		return fmt.Errorf("未知的队列驱动: %s", cfg.Inbox.Queue.Driver)
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			logger.L().Warn("关闭作业队列失败", slog.Any("error", err))
		}
	}()

	service := inbox.NewService(jobStore, jobQueue, cfg.Inbox.MaxRetries)
	processor := inbox.NewProcessor(orchestrator, jobStore, jobQueue, jobQueue,
		inbox.WithWorkerCount(cfg.Inbox.Workers),
		inbox.WithProcessorLogger(logger.Named("inbox")),
	)

	processorCtx, processorCancel := context.WithCancel(ctx)
	defer processorCancel()

	go func() {
		if err := processor.Start(processorCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.L().Error("作业处理器异常退出", slog.Any("error", err))
		}
	}()

	// 演示数据：启动时把种子邮件排入队列。
	if cfg.Inbox.SeedPath != "" {
		messages, err := mail.LoadInbox(cfg.Inbox.SeedPath)
		if err != nil {
			return err
		}
		for _, msg := range messages {
			if _, err := service.Submit(ctx, msg); err != nil {
				logger.L().Warn("种子邮件入队失败",
					slog.Any("error", err),
					slog.Int64("message_id", msg.ID),
				)
			}
		}
	}

	server := api.NewServer(cfg.Server.Address, orchestrator, service)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
