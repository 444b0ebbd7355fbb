package plan

import "SmartMailr/internal/intent"

// Step 是计划中的一个具名工作单元。只有 StepExtractDatetime 与
// StepCreateEvent 带有可执行行为，其余步骤是占位符，由回信生成阶段
// 隐式消费。
type Step string

const (
	StepExtractDatetime   Step = "extract_datetime"
	StepCreateEvent       Step = "create_event"
	StepFindAnswer        Step = "find_answer"
	StepDraftReply        Step = "draft_reply"
	StepDraftAck          Step = "draft_ack"
	StepDraftGeneralReply Step = "draft_general_reply"
)

// Executable 判断一个步骤是否带有可执行行为。
func (s Step) Executable() bool {
	return s == StepExtractDatetime || s == StepCreateEvent
}

// Plan 将一个意图映射到有序的步骤序列。
type Plan struct {
	Intent intent.Intent `json:"intent"`
	Steps  []Step        `json:"steps"`
}

// stepTable 是固定查表：每个意图都有条目，没有失败路径。
// create_event 依赖 extract_datetime 写入的上下文，二者的相对顺序
// 在扩展本表时必须保持。
var stepTable = map[intent.Intent][]Step{
	intent.MeetingRequest:  {StepExtractDatetime, StepCreateEvent, StepDraftReply},
	intent.InfoRequest:     {StepFindAnswer, StepDraftReply},
	intent.Acknowledgement: {StepDraftAck},
	intent.General:         {StepDraftGeneralReply},
}

// Build 根据意图返回固定的执行计划。未知意图按 general 处理，
// 保证函数对任意输入总有返回值。
func Build(it intent.Intent) Plan {
	steps, ok := stepTable[it]
	if !ok {
		it = intent.General
		steps = stepTable[intent.General]
	}
	// 返回副本，避免调用方改写查找表。
	copied := make([]Step, len(steps))
	copy(copied, steps)
	return Plan{Intent: it, Steps: copied}
}
