package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/normalize"
)

// ProcessedNews 展示给调用方的新闻条目：标题已清洗，时间已格式化
type ProcessedNews struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Publisher string `json:"publisher,omitempty"`
	// Published 为 UTC 固定格式；原始值无法解析时保留原样
	Published    string     `json:"published,omitempty"`
	PublishedRaw string     `json:"publishedRaw,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
}

// SimpleProcessor 在展示前做字段规范化与 ID 生成，不改变条目数量与顺序
type SimpleProcessor struct{}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{}
}

func (p *SimpleProcessor) Process(items []collector.NewsItem) []ProcessedNews {
	out := make([]ProcessedNews, 0, len(items))

	for _, it := range items {
		n := ProcessedNews{
			ID:           hashURL(it.URL),
			Title:        normalize.CleanTitle(it.Title),
			URL:          it.URL,
			Publisher:    it.Publisher,
			Published:    normalize.FormatTimestamp(it.DatetimeISO),
			PublishedRaw: it.DatetimeISO,
		}
		if t, ok := normalize.ParseTimestamp(it.DatetimeISO); ok {
			utc := t.UTC()
			n.PublishedAt = &utc
		}
		out = append(out, n)
	}

	return out
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}
