package inbox

import (
	"context"
	"errors"
	"sync"
)

// MemoryQueue 基于带缓冲 channel 的进程内作业队列，适用于测试和单机部署。
type MemoryQueue struct {
	jobs chan string

	closeOnce sync.Once
	done      chan struct{}
}

// NewMemoryQueue 创建内存队列，size 为缓冲区大小。
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{
		jobs: make(chan string, size),
		done: make(chan struct{}),
	}
}

// Publish 将作业编号投递到队列，队列关闭后返回错误。
func (q *MemoryQueue) Publish(ctx context.Context, jobID string) error {
	select {
	case <-q.done:
		return errors.New("队列已关闭")
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return errors.New("队列已关闭")
	case q.jobs <- jobID:
		return nil
	}
}

// Consume 启动 workerCount 个协程消费作业，阻塞直到 ctx 取消或队列关闭。
func (q *MemoryQueue) Consume(ctx context.Context, workerCount int, handler Handler) error {
	if workerCount <= 0 {
		workerCount = 1
	}
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-q.done:
					return
				case jobID := <-q.jobs:
					_ = handler(ctx, jobID)
				}
			}
		}()
	}
	wg.Wait()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Close 关闭内存队列，尚未消费的作业会被丢弃。
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}
