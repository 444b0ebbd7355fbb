package inbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "smartmailr:inbox"

// RedisQueueConfig 描述 Redis 队列的连接参数。
type RedisQueueConfig struct {
	Address   string
	Password  string
	DB        int
	Queue     string
	BlockWait time.Duration
}

// RedisQueue 基于 Redis list 的作业队列。生产端 LPUSH，消费端 BRPOP，
// 处理出错时把作业编号放回队尾兜底。
type RedisQueue struct {
	rdb       *redis.Client
	key       string
	blockWait time.Duration
}

// NewRedisQueue 创建 Redis 队列并验证连通性。
func NewRedisQueue(cfg RedisQueueConfig) (*RedisQueue, error) {
	if cfg.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	q := &RedisQueue{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		key:       cfg.Queue,
		blockWait: cfg.BlockWait,
	}
	if q.key == "" {
		q.key = defaultRedisKey
	}
	if q.blockWait <= 0 {
		q.blockWait = 5 * time.Second
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := q.rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return q, nil
}

// Publish 将作业编号投递到队列头部。
func (q *RedisQueue) Publish(ctx context.Context, jobID string) error {
	if err := q.rdb.LPush(ctx, q.key, jobID).Err(); err != nil {
		return fmt.Errorf("Redis 发布作业失败: %w", err)
	}
	return nil
}

// Consume 启动 workerCount 个协程轮询队列，任一协程出现不可恢复错误时整体退出。
func (q *RedisQueue) Consume(ctx context.Context, workerCount int, handler Handler) error {
	if workerCount <= 0 {
		workerCount = 1
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			q.poll(workerCtx, handler, fail)
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (q *RedisQueue) poll(ctx context.Context, handler Handler, fail func(error)) {
	for ctx.Err() == nil {
		values, err := q.rdb.BRPop(ctx, q.blockWait, q.key).Result()
		switch {
		case err == nil:
		case errors.Is(err, redis.Nil):
			continue
		case errors.Is(err, context.Canceled), errors.Is(err, redis.ErrClosed):
			return
		default:
			fail(fmt.Errorf("Redis 取作业失败: %w", err))
			return
		}
		if len(values) != 2 {
			continue
		}
		jobID := values[1]
		if handlerErr := handler(ctx, jobID); handlerErr != nil {
			// 存储或重投失败时把作业放回队尾，等待下次消费。
			_ = q.rdb.RPush(ctx, q.key, jobID).Err()
		}
	}
}

// Close 关闭 Redis 连接。
func (q *RedisQueue) Close() error {
	if q == nil || q.rdb == nil {
		return nil
	}
	return q.rdb.Close()
}
