package collector

import (
	"net/url"
	"strings"

	"github.com/LJTian/NewsLens/internal/normalize"
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// fieldFunc 从结果块中取某个字段的一种策略，取不到返回空串
type fieldFunc func(block *goquery.Selection) string

// Extractor 将搜索结果页解析为有序、有上限的新闻条目。
// 页面结构没有稳定约定，这里只做“尽力而为”的解析：字段缺失时留空，不报错。
type Extractor struct {
	base   *url.URL
	sel    Selectors
	logger zerolog.Logger

	// 按优先级排列，第一个非空结果生效
	titleChain     []fieldFunc
	publisherChain []fieldFunc
}

// NewExtractor base 为站点源，用于把相对链接解析为绝对地址
func NewExtractor(base string, sel Selectors, logger zerolog.Logger) (*Extractor, error) {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrapf(err, "parse base url %q", base)
	}
	if !u.IsAbs() {
		return nil, errors.Errorf("base url %q is not absolute", base)
	}

	e := &Extractor{base: u, sel: sel, logger: logger}
	e.titleChain = []fieldFunc{
		textOf(sel.Link),
		attrOf(sel.LabelledLink, sel.LabelAttr),
	}
	e.publisherChain = []fieldFunc{
		textOf(sel.Publisher),
		textOf(sel.PublisherMarker),
	}
	return e, nil
}

// ParseResults 按文档顺序扫描结果块，收集到 limit 条即停止；limit <= 0 表示不限。
// 没有任何可用结果块时返回空切片：可能是真的没有结果，也可能是页面结构变了。
func (e *Extractor) ParseResults(page string, limit int) []NewsItem {
	items := make([]NewsItem, 0, capHint(limit))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		e.logger.Warn().Err(err).Msg("parse search page failed")
		return items
	}

	blocks := doc.Find(e.sel.Block)
	blocks.EachWithBreak(func(_ int, block *goquery.Selection) bool {
		link := block.Find(e.sel.Link).First()
		if link.Length() == 0 {
			return true
		}

		title := normalize.CleanTitle(firstNonEmpty(block, e.titleChain))
		if title == "" {
			return true
		}

		href, _ := link.Attr("href")
		abs, err := e.resolve(href)
		if err != nil {
			e.logger.Debug().Err(err).Str("href", href).Msg("skip result with bad link")
			return true
		}

		items = append(items, NewsItem{
			Title:       title,
			URL:         abs,
			Publisher:   firstNonEmpty(block, e.publisherChain),
			DatetimeISO: e.timestamp(block),
		})
		return limit <= 0 || len(items) < limit
	})

	e.logger.Debug().Int("blocks", blocks.Length()).Int("items", len(items)).Msg("parsed search page")
	return items
}

func (e *Extractor) resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return e.base.ResolveReference(ref).String(), nil
}

// timestamp 取时间元素上的机器可读属性，原样返回，格式化留到展示阶段
func (e *Extractor) timestamp(block *goquery.Selection) string {
	v, _ := block.Find(e.sel.Time).First().Attr(e.sel.TimeAttr)
	return v
}

func firstNonEmpty(block *goquery.Selection, chain []fieldFunc) string {
	for _, f := range chain {
		if v := f(block); v != "" {
			return v
		}
	}
	return ""
}

// textOf 取第一个匹配元素的可见文本
func textOf(selector string) fieldFunc {
	return func(block *goquery.Selection) string {
		if selector == "" {
			return ""
		}
		return joinedText(block.Find(selector).First())
	}
}

// attrOf 取第一个匹配元素的属性值
func attrOf(selector, attr string) fieldFunc {
	return func(block *goquery.Selection) string {
		if selector == "" || attr == "" {
			return ""
		}
		v, _ := block.Find(selector).First().Attr(attr)
		return strings.TrimSpace(v)
	}
}

// joinedText 各文本节点之间用空格连接并折叠空白，
// 避免 <b>Foo</b><span>Bar</span> 被拼成 "FooBar"。
func joinedText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "template", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(s.Nodes[0])
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func capHint(limit int) int {
	if limit <= 0 || limit > 100 {
		return 16
	}
	return limit
}
