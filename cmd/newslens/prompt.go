package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/LJTian/NewsLens/internal/pipeline"
)

// promptRequest 交互式读取搜索词与数量；数量留空取默认值，超过上限截断
func promptRequest(in io.Reader, out io.Writer) (pipeline.SearchRequest, error) {
	r := bufio.NewReader(in)

	fmt.Fprint(out, "Search term: ")
	query, err := readLine(r)
	if err != nil {
		return pipeline.SearchRequest{}, err
	}
	if query == "" {
		return pipeline.SearchRequest{}, pipeline.ErrEmptyQuery
	}

	fmt.Fprintf(out, "How many results? (press Enter for %d, max %d): ", pipeline.DefaultLimit, pipeline.MaxLimit)
	raw, err := readLine(r)
	if err != nil {
		return pipeline.SearchRequest{}, err
	}
	limit := pipeline.DefaultLimit
	if raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return pipeline.SearchRequest{}, err
		}
	}

	return pipeline.NewSearchRequest(query, limit)
}

// readLine 最后一行没有换行符时照常返回；输入直接结束返回 io.EOF
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
