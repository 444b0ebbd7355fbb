package triage

import "time"

// Context 在一条邮件的处理周期内串联各步骤的输出。它随编排开始时创建、
// ActionResult 产出后废弃，两条邮件永远不会共享同一个 Context。
// 字段集合是显式声明的，新步骤的输出应当作为新字段扩展。
type Context struct {
	// Datetime 是 extract_datetime 步骤解析出的会议时间，未命中时为 nil。
	Datetime *time.Time
}

// Clock 为时间解析提供参考时刻，测试中注入固定时钟保证确定性。
type Clock func() time.Time

// State 描述一条邮件在编排器内部的阶段，仅用于日志观察，不做持久化。
// 状态只会单向推进，Completed 必达。
type State string

const (
	StateReceived      State = "received"
	StateClassified    State = "classified"
	StatePlanned       State = "planned"
	StateStepsExecuted State = "steps_executed"
	StateReplyDrafted  State = "reply_drafted"
	StateQAFinalized   State = "qa_finalized"
	StateCompleted     State = "completed"
)
