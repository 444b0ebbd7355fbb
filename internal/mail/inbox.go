package mail

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadInbox 解析 JSON 格式的邮件清单，常用于演示与测试数据。
func LoadInbox(path string) ([]Message, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取邮件清单失败: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(content, &messages); err != nil {
		return nil, fmt.Errorf("解析邮件清单失败: %w", err)
	}

	for i, msg := range messages {
		if err := msg.Validate(); err != nil {
			return nil, fmt.Errorf("邮件清单第 %d 条无效: %w", i, err)
		}
	}
	return messages, nil
}
