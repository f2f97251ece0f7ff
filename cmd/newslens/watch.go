package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/LJTian/NewsLens/internal/pipeline"
	"github.com/LJTian/NewsLens/internal/processor"
	"github.com/LJTian/NewsLens/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	watchEvery   string
	watchQueries []string
	watchLimit   int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run searches on a cron schedule",
	Long: `Run one round immediately, then repeat every search on the given cron
schedule until interrupted. Rounds never overlap and nothing is stored
between rounds.`,
	Example: `  newslens watch --every "*/30 * * * *" -q "storm coast" -q "rate cut"`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		spec := watchEvery
		if spec == "" {
			spec = cfg.WatchSpec
		}

		reqs, err := watchRequests(watchQueries, watchLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
			os.Exit(1)
		}

		driver, err := pipeline.Build(cfg, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		s, err := scheduler.New(ctx, spec, reqs, driver, printSink(os.Stdout, log), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		log.Info().Str("spec", spec).Int("searches", len(reqs)).Msg("starting watch...")
		s.RunOnce(ctx)
		s.Start()

		<-ctx.Done()
		s.Stop()
		fmt.Fprintln(os.Stdout, "\nCancelled.")
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchEvery, "every", "", "cron schedule (defaults to WATCH_SPEC)")
	watchCmd.Flags().StringArrayVarP(&watchQueries, "query", "q", nil, "search term, repeatable")
	watchCmd.Flags().IntVarP(&watchLimit, "limit", "n", pipeline.DefaultLimit,
		fmt.Sprintf("number of results per search (max %d)", pipeline.MaxLimit))
	rootCmd.AddCommand(watchCmd)
}

func watchRequests(queries []string, limit int) ([]pipeline.SearchRequest, error) {
	if len(queries) == 0 {
		return nil, pipeline.ErrEmptyQuery
	}
	reqs := make([]pipeline.SearchRequest, 0, len(queries))
	for _, q := range queries {
		req, err := pipeline.NewSearchRequest(q, limit)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// printSink 每次搜索输出一个带时间的标题块；写入加锁，避免与下一轮交错
func printSink(out io.Writer, logger zerolog.Logger) scheduler.Sink {
	var mu sync.Mutex
	return func(req pipeline.SearchRequest, res *pipeline.Result, err error) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(out, "\n[%s] %s\n\n", time.Now().Format(time.DateTime), req.Query)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := processor.WriteText(out, res.Items); err != nil {
			logger.Warn().Err(err).Str("query", req.Query).Msg("write watch results failed")
		}
	}
}
