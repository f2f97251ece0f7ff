package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/pipeline"
	"github.com/LJTian/NewsLens/internal/processor"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	searchQuery string
	searchLimit int
	searchJSON  bool
)

// searcher 执行一次搜索，*pipeline.Driver 满足该接口
type searcher interface {
	Run(ctx context.Context, req pipeline.SearchRequest) (*pipeline.Result, error)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a single Google News search",
	Long: `Fetch one Google News search page and print the results.

Without -q the search term and result count are read interactively.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		driver, err := pipeline.Build(cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var req pipeline.SearchRequest
		if cmd.Flags().Changed("query") {
			req, err = pipeline.NewSearchRequest(searchQuery, searchLimit)
		} else {
			req, err = promptContext(ctx, os.Stdin, os.Stdout)
		}
		if code, done := inputFailure(os.Stdout, err); done {
			os.Exit(code)
		}

		os.Exit(runSearch(ctx, driver, cfg.BaseURL, req, searchJSON, os.Stdout))
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search term")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", pipeline.DefaultLimit,
		fmt.Sprintf("number of results (max %d)", pipeline.MaxLimit))
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// promptContext 读取标准输入时仍能响应 Ctrl-C
func promptContext(ctx context.Context, in io.Reader, out io.Writer) (pipeline.SearchRequest, error) {
	type prompted struct {
		req pipeline.SearchRequest
		err error
	}
	ch := make(chan prompted, 1)
	go func() {
		req, err := promptRequest(in, out)
		ch <- prompted{req, err}
	}()

	select {
	case <-ctx.Done():
		return pipeline.SearchRequest{}, ctx.Err()
	case p := <-ch:
		return p.req, p.err
	}
}

// inputFailure 把输入阶段的错误转换为提示与退出码；done 为 false 表示输入有效
func inputFailure(out io.Writer, err error) (code int, done bool) {
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
		fmt.Fprintln(out, "\nCancelled.")
		return 0, true
	case errors.Is(err, pipeline.ErrEmptyQuery):
		fmt.Fprintln(out, "Search term cannot be empty.")
		return 1, true
	default:
		fmt.Fprintf(out, "Invalid input: %v\n", err)
		return 1, true
	}
}

// runSearch 执行搜索并输出，返回进程退出码。
// 没有结果不算失败；抓取失败按 HTTP 错误与网络错误分别提示。
func runSearch(ctx context.Context, s searcher, base string, req pipeline.SearchRequest, asJSON bool, out io.Writer) int {
	searchURL, err := collector.BuildSearchURL(base, req.Query)
	if err != nil {
		fmt.Fprintf(out, "Invalid input: %v\n", err)
		return 1
	}
	if !asJSON {
		fmt.Fprintf(out, "\nGoogle News search: %s\n\n", searchURL)
	}

	res, err := s.Run(ctx, req)
	if err != nil {
		var (
			statusErr *collector.HTTPStatusError
			netErr    *collector.NetworkError
		)
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(out, "\nCancelled.")
			return 0
		case errors.As(err, &statusErr):
			fmt.Fprintf(out, "HTTP error: %v\n", statusErr)
		case errors.As(err, &netErr):
			fmt.Fprintf(out, "Network error: %v\n", netErr)
		default:
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return 1
		}
		return 0
	}

	if err := processor.WriteText(out, res.Items); err != nil {
		return 1
	}
	return 0
}
