package intent

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule 将一个意图绑定到一组触发关键词，规则之间的顺序即匹配优先级。
type Rule struct {
	Intent   Intent   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

// RuleFile models the structure of configs/intent_rules.yaml.
type RuleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules 返回内置规则表。顺序敏感：meeting_request 优先于
// info_request，info_request 优先于 acknowledgement，未命中则 general。
func DefaultRules() []Rule {
	return []Rule{
		{Intent: MeetingRequest, Keywords: []string{"meet", "meeting", "schedule", "call"}},
		{Intent: InfoRequest, Keywords: []string{"please", "could you", "can you", "send"}},
		{Intent: Acknowledgement, Keywords: []string{"thanks", "thank you", "acknowledge"}},
	}
}

// LoadRules 解析 YAML 规则文件。路径为空时返回内置规则表。
func LoadRules(path string) ([]Rule, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取意图规则失败: %w", err)
	}

	var file RuleFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("解析意图规则失败: %w", err)
	}
	if len(file.Rules) == 0 {
		return DefaultRules(), nil
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, rule := range file.Rules {
		if !IsValid(rule.Intent) {
			return nil, fmt.Errorf("规则 %d 使用了未知意图: %s", i, rule.Intent)
		}
		if rule.Intent == General {
			// general 是兜底意图，不允许配置关键词。
			return nil, fmt.Errorf("规则 %d 不能绑定到 general", i)
		}
		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			normalized := strings.ToLower(strings.TrimSpace(keyword))
			if normalized == "" {
				continue
			}
			keywords = append(keywords, normalized)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("规则 %d 缺少关键词", i)
		}
		rules = append(rules, Rule{Intent: rule.Intent, Keywords: keywords})
	}
	return rules, nil
}
