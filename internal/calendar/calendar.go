package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event 记录一次日历创建调用的结果。
type Event struct {
	EventID  string     `json:"event_id"`
	Status   string     `json:"status"`
	Summary  string     `json:"summary"`
	Datetime *time.Time `json:"datetime"`
}

// Service 定义日历协作方的统一接口。真实的日历集成（Google Calendar 等）
// 不在本系统范围内，编排器只依赖该接口，替换实现即可接入真实服务。
type Service interface {
	CreateEvent(ctx context.Context, summary string, when *time.Time) (*Event, error)
}

// Mock 是进程内的日历替身：永远成功，事件 ID 在单次进程运行内唯一。
type Mock struct{}

// NewMock 创建日历替身。
func NewMock() *Mock {
	return &Mock{}
}

// CreateEvent 实现 Service 接口。when 允许为 nil，表示未解析出时间。
func (m *Mock) CreateEvent(_ context.Context, summary string, when *time.Time) (*Event, error) {
	return &Event{
		EventID:  "evt_" + uuid.NewString(),
		Status:   "created",
		Summary:  summary,
		Datetime: when,
	}, nil
}

var _ Service = (*Mock)(nil)
