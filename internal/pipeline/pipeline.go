// Package pipeline 串联搜索 URL 构造、抓取、解析与展示前处理，是对外的单次搜索入口。
package pipeline

import (
	"context"
	"time"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/config"
	"github.com/LJTian/NewsLens/internal/processor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultLimit = 5
	MaxLimit     = 100

	// DefaultPolitenessDelay 抓取完成后、解析之前的固定停顿
	DefaultPolitenessDelay = 800 * time.Millisecond
)

var (
	ErrEmptyQuery   = collector.ErrEmptyQuery
	ErrInvalidLimit = errors.New("result count must be at least 1")
)

// SearchRequest 一次搜索的输入，构造后不再修改
type SearchRequest struct {
	Query string
	Limit int
}

// NewSearchRequest 校验输入：搜索词不能为空，数量小于 1 报错，大于 100 截断为 100
func NewSearchRequest(query string, limit int) (SearchRequest, error) {
	if limit < 1 {
		return SearchRequest{}, ErrInvalidLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if _, err := collector.BuildSearchURL("", query); err != nil {
		return SearchRequest{}, err
	}
	return SearchRequest{Query: query, Limit: limit}, nil
}

// Result 一次搜索的输出；Items 为空表示没有结果（或页面结构已变化），不是错误
type Result struct {
	RunID     string                    `json:"runId"`
	SearchURL string                    `json:"searchUrl"`
	Items     []processor.ProcessedNews `json:"items"`
}

func (r *Result) Empty() bool {
	return len(r.Items) == 0
}

// Driver 只负责编排各个组件，本身不含解析逻辑。
// 各字段构造后只读，可以被多次调用复用，每次调用之间不共享状态。
type Driver struct {
	BaseURL   string
	Fetcher   collector.Fetcher
	Extractor *collector.Extractor
	Processor *processor.SimpleProcessor
	Delay     time.Duration
	Logger    zerolog.Logger
}

// Build 按配置组装 Driver
func Build(cfg *config.Config, logger zerolog.Logger) (*Driver, error) {
	sel, err := cfg.Selectors()
	if err != nil {
		return nil, err
	}
	extractor, err := collector.NewExtractor(cfg.BaseURL, sel, logger)
	if err != nil {
		return nil, err
	}

	var fetcher collector.Fetcher
	switch cfg.FetchMode {
	case config.FetchModeHTTP, "":
		fetcher = collector.NewHTTPFetcher(cfg.FetchConfig(), logger)
	case config.FetchModeBrowser:
		fetcher = collector.NewBrowserFetcher(cfg.FetchConfig(), cfg.BrowserExecPath, logger)
	default:
		return nil, errors.Errorf("unknown fetch mode %q", cfg.FetchMode)
	}

	return &Driver{
		BaseURL:   cfg.BaseURL,
		Fetcher:   fetcher,
		Extractor: extractor,
		Processor: processor.NewSimpleProcessor(),
		Delay:     cfg.PolitenessDelay,
		Logger:    logger,
	}, nil
}

// Run 校验 → 构造 URL → 抓取 → 停顿 → 解析 → 规范化。
// 抓取失败直接返回 *collector.HTTPStatusError 或 *collector.NetworkError。
func (d *Driver) Run(ctx context.Context, req SearchRequest) (*Result, error) {
	req, err := NewSearchRequest(req.Query, req.Limit)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := d.Logger.With().Str("run_id", runID).Str("fetcher", d.Fetcher.Name()).Logger()

	searchURL, err := collector.BuildSearchURL(d.BaseURL, req.Query)
	if err != nil {
		return nil, err
	}

	log.Info().Str("query", req.Query).Int("limit", req.Limit).Msg("fetch google news search...")
	page, err := d.Fetcher.Fetch(ctx, searchURL)
	if err != nil {
		log.Error().Err(err).Str("url", searchURL).Msg("fetch google news search failed")
		return nil, err
	}

	if err := sleep(ctx, d.Delay); err != nil {
		return nil, err
	}

	items := d.Extractor.ParseResults(page, req.Limit)
	if len(items) == 0 {
		log.Info().Msg("google news search got 0 items")
	} else {
		log.Info().Int("items", len(items)).Msg("google news search done")
	}

	p := d.Processor
	if p == nil {
		p = processor.NewSimpleProcessor()
	}
	return &Result{
		RunID:     runID,
		SearchURL: searchURL,
		Items:     p.Process(items),
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
