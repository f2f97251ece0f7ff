// Package normalize 提供标题与时间戳的纯函数清洗，采集层与展示层共用。
package normalize

import (
	"strings"
	"time"
)

// titleSuffixSep 新闻标题末尾常带有 " - 来源名"
const titleSuffixSep = " - "

// TimestampLayout 展示用的 UTC 时间格式，例如 07 March 2024 18:30:00 UTC
const TimestampLayout = "02 January 2006 15:04:05 UTC"

// isoLayouts 依次尝试的 ISO-8601 写法；带时区的优先，不带时区的按 UTC 处理
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// CleanTitle 去掉标题中第一个 " - " 之后的来源后缀；没有分隔符时只做首尾空白清理。
// 不带空格的连字符（如 "COVID-19"）保持不变。
func CleanTitle(raw string) string {
	if idx := strings.Index(raw, titleSuffixSep); idx != -1 {
		return strings.TrimSpace(raw[:idx])
	}
	return strings.TrimSpace(raw)
}

// FormatTimestamp 将 ISO-8601 时间转换为 UTC 的固定展示格式。
// 空输入返回空；无法解析时原样返回，不影响整体流程。
func FormatTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	t, ok := ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp 解析 ISO-8601 时间，末尾的 "Z" 与 "+00:00" 等价
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
