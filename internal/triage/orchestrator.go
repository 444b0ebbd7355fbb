package triage

import (
	"context"
	"log/slog"
	"time"

	"SmartMailr/internal/calendar"
	xerrors "SmartMailr/internal/errors"
	"SmartMailr/internal/intent"
	"SmartMailr/internal/mail"
	"SmartMailr/internal/mailer"
	"SmartMailr/internal/plan"
	"SmartMailr/pkg/logger"
)

// DatetimeExtraction 记录 extract_datetime 步骤的输出。步骤执行过但
// 未命中任何线索时 Datetime 为 nil。
type DatetimeExtraction struct {
	Datetime *time.Time `json:"datetime"`
}

// Actions 汇总已执行步骤的输出、最终回信与送达标记。
// 未执行的步骤不出现在序列化结果中。
type Actions struct {
	ExtractDatetime *DatetimeExtraction `json:"extract_datetime,omitempty"`
	CreateEvent     *calendar.Event     `json:"create_event,omitempty"`
	Reply           string              `json:"reply"`
	Sent            bool                `json:"sent"`
}

// ActionResult 是一条邮件处理完成后的最终记录，构造后不再修改，
// 归接收它的调用方所有。
type ActionResult struct {
	MessageID int64     `json:"message_id"`
	Plan      plan.Plan `json:"plan"`
	Actions   Actions   `json:"actions"`
	CreatedAt int64     `json:"created_at"`
}

// Orchestrator 驱动一条邮件走完 分类 → 计划 → 执行 → 回信合成 的完整
// 流水线。自身不持有跨邮件的可变状态，可以被多个 goroutine 并发使用。
type Orchestrator struct {
	classifier *intent.Classifier
	calendar   calendar.Service
	transport  mailer.Transport
	clock      Clock
	logger     *slog.Logger
}

// Option 定义可选的编排器配置。
type Option func(*Orchestrator)

// WithClassifier 替换意图分类器（例如从规则文件构建）。
func WithClassifier(classifier *intent.Classifier) Option {
	return func(o *Orchestrator) {
		if classifier != nil {
			o.classifier = classifier
		}
	}
}

// WithClock 注入参考时钟，测试中用于固定时间解析结果。
func WithClock(clock Clock) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger 指定日志输出。
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.logger = log
		}
	}
}

// New 创建编排器。calendar 或 transport 为 nil 时使用进程内替身。
func New(cal calendar.Service, transport mailer.Transport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier: intent.NewClassifier(nil),
		calendar:   cal,
		transport:  transport,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.calendar == nil {
		o.calendar = calendar.NewMock()
	}
	if o.transport == nil {
		o.transport = mailer.NewMock()
	}
	if o.logger == nil {
		o.logger = logger.Named("triage")
	}
	return o
}

// Process 将一条邮件处理为 ActionResult。
// 步骤严格按照计划顺序串行执行：create_event 读取 extract_datetime
// 写入的上下文，二者的顺序由计划表保证。
func (o *Orchestrator) Process(ctx context.Context, msg mail.Message) (*ActionResult, error) {
	// 非法邮件在进入流水线之前被拒绝。
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	o.transition(msg.ID, StateReceived)

	it := o.classifier.Classify(msg.Subject, msg.Body)
	o.transition(msg.ID, StateClassified, slog.String("intent", string(it)))

	p := plan.Build(it)
	o.transition(msg.ID, StatePlanned, slog.Int("steps", len(p.Steps)))

	execCtx := &Context{}
	actions := Actions{}

	for _, step := range p.Steps {
		switch step {
		case plan.StepExtractDatetime:
			when := ExtractDatetime(msg.Body, o.clock())
			execCtx.Datetime = when
			actions.ExtractDatetime = &DatetimeExtraction{Datetime: when}
		case plan.StepCreateEvent:
			event, err := o.calendar.CreateEvent(ctx, "Meeting with "+msg.Sender, execCtx.Datetime)
			if err != nil {
				return nil, xerrors.Wrap(xerrors.CodeCalendarFailure, err, "创建日历事件失败")
			}
			actions.CreateEvent = event
		default:
			// 占位步骤在执行阶段是空操作，由回信生成隐式消费。
		}
	}
	o.transition(msg.ID, StateStepsExecuted)

	replyText := GenerateReply(it, msg, execCtx)
	o.transition(msg.ID, StateReplyDrafted)

	replyText = Finalize(replyText)
	o.transition(msg.ID, StateQAFinalized)

	// 发送协作方是进程内替身，永远确认送达；真实集成的失败必须在这里
	// 以独立错误码上抛，而不是被吞成 sent = true。
	ack, err := o.transport.Send(ctx, msg.Sender, replyText)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeTransportFailure, err, "发送回信失败")
	}
	actions.Reply = replyText
	actions.Sent = ack.Delivered

	result := &ActionResult{
		MessageID: msg.ID,
		Plan:      p,
		Actions:   actions,
		CreatedAt: o.clock().Unix(),
	}
	o.transition(msg.ID, StateCompleted)
	return result, nil
}

func (o *Orchestrator) transition(messageID int64, state State, attrs ...slog.Attr) {
	if o.logger == nil {
		return
	}
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.Int64("message_id", messageID), slog.String("state", string(state)))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	o.logger.Debug("状态推进", args...)
}
