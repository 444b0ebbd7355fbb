package mail

import (
	"strings"
	"time"

	xerrors "SmartMailr/internal/errors"
)

// Message 描述一封进入分拣流水线的邮件，创建后不可修改。
// ID 由调用方分配，在调用方范围内唯一。
type Message struct {
	ID         int64     `json:"id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// Validate 校验必填字段。缺失字段的邮件必须在进入流水线之前被拒绝，
// 校验失败直接反馈给调用方，系统不做任何猜测性补全。
func (m Message) Validate() error {
	if strings.TrimSpace(m.Sender) == "" {
		return xerrors.New(xerrors.CodeValidationFailure, "sender 不能为空", xerrors.WithMetadata("field", "sender"))
	}
	if !strings.Contains(m.Sender, "@") {
		return xerrors.New(xerrors.CodeValidationFailure, "sender 必须是邮件地址", xerrors.WithMetadata("field", "sender"))
	}
	if strings.TrimSpace(m.Subject) == "" {
		return xerrors.New(xerrors.CodeValidationFailure, "subject 不能为空", xerrors.WithMetadata("field", "subject"))
	}
	if strings.TrimSpace(m.Body) == "" {
		return xerrors.New(xerrors.CodeValidationFailure, "body 不能为空", xerrors.WithMetadata("field", "body"))
	}
	if m.ReceivedAt.IsZero() {
		return xerrors.New(xerrors.CodeValidationFailure, "received_at 不能为空", xerrors.WithMetadata("field", "received_at"))
	}
	return nil
}

// LocalPart 返回发件人地址 @ 之前的部分，用于回信的称呼。
func (m Message) LocalPart() string {
	if idx := strings.Index(m.Sender, "@"); idx >= 0 {
		return m.Sender[:idx]
	}
	return m.Sender
}
