package collector

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// DefaultBaseURL Google News 站点源，相对链接都基于它解析
const DefaultBaseURL = "https://news.google.com"

// 语言与地区固定为英文/美国
const searchURLTemplate = "%s/search?q=%s&hl=en-US&gl=US&ceid=US%%3Aen"

// ErrEmptyQuery 搜索词为空或只包含空白
var ErrEmptyQuery = errors.New("search term cannot be empty")

// BuildSearchURL 将搜索词按表单规则编码（空格变为 +）后拼接到搜索页模板。
// base 为空时使用 DefaultBaseURL。
func BuildSearchURL(base, query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrEmptyQuery
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf(searchURLTemplate, base, url.QueryEscape(q)), nil
}
