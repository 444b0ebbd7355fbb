package triage

import "strings"

// Signature 是回信固定的两行落款。
const Signature = "Best,\nSmartMailr"

// Finalize 对回信文本做最终整理：逐行去除首尾空白并丢弃空行，落款
// 未逐字出现时补上。幂等：Finalize(Finalize(x)) == Finalize(x)，补签名
// 时不引入空行正是为了保住这一性质。没有失败路径。
func Finalize(text string) string {
	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
	}
	out := strings.Join(lines, "\n")

	if !strings.Contains(out, Signature) {
		if out != "" {
			out += "\n"
		}
		out += Signature
	}
	return out
}
