package inbox

import (
	"context"

	"SmartMailr/internal/triage"
)

// RecoveryHandler 定义了在作业处理失败时的补偿策略。
type RecoveryHandler interface {
	// Recover 尝试根据失败原因进行补偿或降级。
	// 返回的 ActionResult 将作为降级结果写入作业；若返回 nil 则继续按照失败流程处理。
	Recover(ctx context.Context, job *Job, cause error) (*triage.ActionResult, error)
}
