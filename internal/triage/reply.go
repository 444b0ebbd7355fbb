package triage

import (
	"fmt"

	"SmartMailr/internal/intent"
	"SmartMailr/internal/mail"
)

// datetimeLayout 是回信中展示会议时间的格式（2024-05-02 04:00 PM）。
const datetimeLayout = "2006-01-02 03:04 PM"

// fallbackTime 是未解析出会议时间时回信里使用的字面短语。
const fallbackTime = "a time"

// GenerateReply 根据意图与累积上下文渲染回信模板。每个模板都以发件人
// 地址 @ 之前的部分开头称呼对方，并以固定落款结束。纯函数，无副作用。
func GenerateReply(it intent.Intent, msg mail.Message, c *Context) string {
	name := msg.LocalPart()

	switch it {
	case intent.MeetingRequest:
		dtText := fallbackTime
		if c != nil && c.Datetime != nil {
			dtText = c.Datetime.Format(datetimeLayout)
		}
		return fmt.Sprintf("Hi %s,\n\nThanks — that works for me. I've scheduled the meeting for %s.\n\n%s", name, dtText, Signature)
	case intent.InfoRequest:
		return fmt.Sprintf("Hi %s,\n\nThanks for reaching out. I will gather the information and send it shortly.\n\n%s", name, Signature)
	case intent.Acknowledgement:
		return fmt.Sprintf("Hi %s,\n\nThanks for the update — noted.\n\n%s", name, Signature)
	default:
		return fmt.Sprintf("Hi %s,\n\nThanks for your message. I'll get back to you soon.\n\n%s", name, Signature)
	}
}
