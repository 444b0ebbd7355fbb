package intent

import "strings"

// Intent 表示一封邮件目的的封闭分类。
type Intent string

const (
	MeetingRequest  Intent = "meeting_request"
	InfoRequest     Intent = "info_request"
	Acknowledgement Intent = "acknowledgement"
	General         Intent = "general"
)

// IsValid 检查给定的意图是否为支持的枚举值。
func IsValid(it Intent) bool {
	switch it {
	case MeetingRequest, InfoRequest, Acknowledgement, General:
		return true
	default:
		return false
	}
}

// Classifier 按规则表的顺序对邮件文本做关键词分类。
// 同一段文本命中多个类别时，以规则表中靠前的类别为准，不做任何打分。
type Classifier struct {
	rules []Rule
}

// NewClassifier 创建分类器。rules 为空时使用内置规则表。
func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify 对主题与正文做大小写不敏感的顺序匹配，永远返回一个意图。
func (c *Classifier) Classify(subject, body string) Intent {
	text := strings.ToLower(subject + " " + body)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(text, keyword) {
				return rule.Intent
			}
		}
	}
	return General
}
