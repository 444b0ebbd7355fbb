package mailer

import "context"

// Ack 是邮件投递方返回的送达确认。
type Ack struct {
	Delivered bool `json:"delivered"`
}

// Transport 定义邮件发送协作方的统一接口。真实的 SMTP/Gmail 集成不在
// 本系统范围内，编排器只通过该接口发送回信。
type Transport interface {
	Send(ctx context.Context, recipient, body string) (Ack, error)
}

// Mock 是进程内的发送替身，永远确认送达。
type Mock struct{}

// NewMock 创建发送替身。
func NewMock() *Mock {
	return &Mock{}
}

// Send 实现 Transport 接口。
func (m *Mock) Send(_ context.Context, _, _ string) (Ack, error) {
	return Ack{Delivered: true}, nil
}

var _ Transport = (*Mock)(nil)
