package collector

import (
	"context"
	"net/http"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// BrowserFetcher 用无头 Chrome 打开页面后取渲染完成的 HTML，
// 适用于结果页改为脚本渲染、直接 GET 拿不到结果块的情况。
// 与 HTTPFetcher 共用同一套重试策略与请求头。
type BrowserFetcher struct {
	cfg       FetchConfig
	logger    zerolog.Logger
	allocOpts []chromedp.ExecAllocatorOption
}

// NewBrowserFetcher execPath 为空时由 chromedp 自行查找本机 Chrome
func NewBrowserFetcher(cfg FetchConfig, execPath string, logger zerolog.Logger) *BrowserFetcher {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.UserAgent(cfg.userAgent()))
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	return &BrowserFetcher{cfg: cfg, logger: logger, allocOpts: opts}
}

func (b *BrowserFetcher) Name() string {
	return "browser"
}

func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return b.cfg.Policy.do(ctx, b.logger, http.MethodGet, url, b.attempt)
}

// attempt 每次尝试启动独立的浏览器实例，结束即销毁，不保留 cookie 与缓存
func (b *BrowserFetcher) attempt(ctx context.Context, url string) attemptResult {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, b.cfg.timeout())
	defer cancel()

	// User-Agent 已在启动参数中设置，其余请求头通过 CDP 附加
	headers := network.Headers{}
	for k, v := range b.cfg.Headers {
		if k == "User-Agent" {
			continue
		}
		headers[k] = v
	}
	if err := chromedp.Run(runCtx, network.Enable(), network.SetExtraHTTPHeaders(headers)); err != nil {
		return attemptResult{err: err}
	}

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return attemptResult{err: err}
	}
	if resp == nil {
		return attemptResult{err: errNoResponse}
	}

	res := attemptResult{status: int(resp.Status)}
	if !res.ok() {
		return res
	}

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return attemptResult{err: err}
	}
	res.body = html

	b.logger.Debug().Str("url", url).Int("bytes", len(html)).Msg("browser rendered page")
	return res
}
