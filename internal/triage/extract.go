package triage

import (
	"strings"
	"time"
)

// meetingHour 是所有时间线索统一解析到的小时（16:00）。
const meetingHour = 16

// ExtractDatetime 在正文中扫描时间线索，按固定优先级解析：
// "tomorrow" 解析为参考日期的次日；其次 "today" 解析为参考日期当天；
// 其次 "4 pm"/"4pm" 解析为次日。所有命中统一落在 16:00:00.000。
// 未命中返回 nil，这是合法结果而不是错误。
func ExtractDatetime(body string, ref time.Time) *time.Time {
	text := strings.ToLower(body)

	var day time.Time
	switch {
	case strings.Contains(text, "tomorrow"):
		day = ref.AddDate(0, 0, 1)
	case strings.Contains(text, "today"):
		day = ref
	case strings.Contains(text, "4 pm"), strings.Contains(text, "4pm"):
		day = ref.AddDate(0, 0, 1)
	default:
		return nil
	}

	when := time.Date(day.Year(), day.Month(), day.Day(), meetingHour, 0, 0, 0, ref.Location())
	return &when
}
