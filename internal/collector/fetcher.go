package collector

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

const (
	// DefaultFetchTimeout 单次请求的超时时间
	DefaultFetchTimeout = 10 * time.Second
	maxBodyBytes        = 5 << 20 // 5MB，搜索结果页不会更大
)

// NewsItem 从搜索结果页的单个结果块中解析出的新闻条目。
// Publisher 与 DatetimeISO 为空表示页面上没有对应字段。
type NewsItem struct {
	Title       string
	URL         string
	Publisher   string
	DatetimeISO string
}

// Fetcher 抽象抓取方式：直接 HTTP 或无头浏览器
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, url string) (string, error)
}

// 目标站点会对非浏览器 UA 返回降级页面甚至直接拒绝
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// DefaultHeaders 返回一份默认请求头的拷贝
func DefaultHeaders() map[string]string {
	out := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		out[k] = v
	}
	return out
}

// FetchConfig 抓取相关的只读配置，构造一次后在多次调用之间复用
type FetchConfig struct {
	Policy  RetryPolicy
	Headers map[string]string
	Timeout time.Duration
}

// DefaultFetchConfig 默认重试策略 + 浏览器请求头 + 10 秒超时
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Policy:  DefaultRetryPolicy(),
		Headers: DefaultHeaders(),
		Timeout: DefaultFetchTimeout,
	}
}

func (c FetchConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultFetchTimeout
	}
	return c.Timeout
}

func (c FetchConfig) userAgent() string {
	if ua := c.Headers["User-Agent"]; ua != "" {
		return ua
	}
	return defaultHeaders["User-Agent"]
}

// HTTPFetcher 基于 colly 的抓取器，GET 请求在底层按 RetryPolicy 透明重试
type HTTPFetcher struct {
	cfg    FetchConfig
	logger zerolog.Logger
}

func NewHTTPFetcher(cfg FetchConfig, logger zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{cfg: cfg, logger: logger}
}

func (f *HTTPFetcher) Name() string {
	return "http"
}

// Fetch 返回页面 HTML；失败时返回 *HTTPStatusError 或 *NetworkError
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.cfg.Policy.do(ctx, f.logger, http.MethodGet, url, f.attempt)
}

// ctxTransport 把本次尝试的 ctx 挂到 colly 发出的请求上，ctx 取消时连接随之中断
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// newCollector 每次尝试都新建 collector，避免 cookie 等状态在请求之间残留
func (f *HTTPFetcher) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.cfg.userAgent()),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxBodyBytes),
		// 非 2xx 也走 OnResponse，状态码的分类由 RetryPolicy 负责
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(f.cfg.timeout())
	c.WithTransport(&ctxTransport{ctx: ctx, base: http.DefaultTransport})

	c.OnRequest(func(r *colly.Request) {
		for k, v := range f.cfg.Headers {
			r.Headers.Set(k, v)
		}
	})
	return c
}

func (f *HTTPFetcher) attempt(ctx context.Context, url string) attemptResult {
	c := f.newCollector(ctx)

	var (
		mu  sync.Mutex
		res attemptResult
	)

	c.OnResponse(func(r *colly.Response) {
		mu.Lock()
		defer mu.Unlock()
		res.status = r.StatusCode
		res.body = string(r.Body)
		if r.Headers != nil {
			res.retryAfter = parseRetryAfter(r.Headers.Get("Retry-After"), time.Now())
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		res.err = err
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return attemptResult{err: ctx.Err()}
	case err := <-done:
		mu.Lock()
		defer mu.Unlock()
		if res.err == nil && err != nil {
			res.err = err
		}
		return res
	}
}
