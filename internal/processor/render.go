package processor

import (
	"fmt"
	"io"
	"strings"
)

// NoResultsMessage 解析结果为空时的提示；没有结果与页面结构变化无法区分
const NoResultsMessage = "No results found or page structure may have changed."

var separator = strings.Repeat("-", 80)

// WriteText 按编号输出条目，来源与发布时间缺失时整行省略
func WriteText(w io.Writer, items []ProcessedNews) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, NoResultsMessage)
		return err
	}

	for i, it := range items {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Title)
		if it.Publisher != "" {
			fmt.Fprintf(&b, "   Source    : %s\n", it.Publisher)
		}
		if it.Published != "" {
			fmt.Fprintf(&b, "   Published : %s\n", it.Published)
		}
		fmt.Fprintf(&b, "   Link      : %s\n", it.URL)
		b.WriteString(separator)
		b.WriteByte('\n')

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
