package scheduler

import (
	"context"
	"time"

	"github.com/LJTian/NewsLens/internal/pipeline"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Runner 执行一次搜索，*pipeline.Driver 满足该接口
type Runner interface {
	Run(ctx context.Context, req pipeline.SearchRequest) (*pipeline.Result, error)
}

// Sink 接收每次搜索的结果或错误
type Sink func(req pipeline.SearchRequest, res *pipeline.Result, err error)

// Scheduler 按 cron 表达式反复执行一组搜索；每轮相互独立，不保留任何结果
type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	requests []pipeline.SearchRequest
	runner   Runner
	sink     Sink
	logger   zerolog.Logger
	timeout  time.Duration
}

// New 上一轮尚未结束时跳过本轮，避免对同一站点叠加请求。
// ctx 结束后定时触发的轮次会立即停止，正在执行的搜索也会被取消。
func New(ctx context.Context, spec string, requests []pipeline.SearchRequest, runner Runner, sink Sink, logger zerolog.Logger) (*Scheduler, error) {
	if len(requests) == 0 {
		return nil, errors.New("no search requests to schedule")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	s := &Scheduler{
		ctx:      ctx,
		cron:     c,
		requests: requests,
		runner:   runner,
		sink:     sink,
		logger:   logger,
		timeout:  2 * time.Minute,
	}

	if _, err := c.AddFunc(spec, func() { s.runOnce(s.ctx) }); err != nil {
		return nil, errors.Wrapf(err, "invalid cron spec %q", spec)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的一轮结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce 对外暴露的单次执行入口，方便启动时先跑一轮
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.runOnce(ctx)
}

func (s *Scheduler) runOnce(parent context.Context) {
	s.logger.Info().Int("searches", len(s.requests)).Msg("start watch round...")

	// 逐个执行，同一时刻只有一个请求打到源站
	for _, req := range s.requests {
		if err := parent.Err(); err != nil {
			s.logger.Info().Err(err).Msg("watch round cancelled")
			return
		}

		ctx, cancel := context.WithTimeout(parent, s.timeout)
		res, err := s.runner.Run(ctx, req)
		cancel()

		// 取消导致的失败不再交给 sink
		if parent.Err() != nil {
			s.logger.Info().Err(parent.Err()).Msg("watch round cancelled")
			return
		}

		if err != nil {
			s.logger.Error().Err(err).Str("query", req.Query).Msg("watch search failed")
		}
		if s.sink != nil {
			s.sink(req, res, err)
		}
	}

	s.logger.Info().Msg("watch round done")
}
