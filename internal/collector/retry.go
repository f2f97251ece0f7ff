package collector

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const maxRetryAfter = 30 * time.Second

var errNoResponse = errors.New("no response received")

// RetryPolicy 描述抓取的重试规则；值类型，构造后只读
type RetryPolicy struct {
	MaxAttempts       int
	BackoffBase       time.Duration
	RetryableStatuses map[int]bool
	RetryableMethods  map[string]bool
}

// DefaultRetryPolicy 最多 3 次尝试，0.8 秒起指数退避，只对 GET 和限流/网关类状态码重试
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: 800 * time.Millisecond,
		RetryableStatuses: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
		RetryableMethods: map[string]bool{http.MethodGet: true},
	}
}

// Backoff 第 attempt 次失败后的等待时间：base * 2^(attempt-1)
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.BackoffBase <= 0 {
		return 0
	}
	return p.BackoffBase << (attempt - 1)
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// attemptResult 单次尝试的结果；status 为 0 表示没有拿到任何响应
type attemptResult struct {
	body       string
	status     int
	retryAfter time.Duration
	err        error
}

func (r attemptResult) ok() bool {
	return r.err == nil && r.status >= 200 && r.status < 300
}

type attemptFunc func(ctx context.Context, url string) attemptResult

// do 顺序执行尝试，重试之间按退避时间等待；ctx 取消会同时中断请求与等待
func (p RetryPolicy) do(ctx context.Context, logger zerolog.Logger, method, url string, attempt attemptFunc) (string, error) {
	limit := p.maxAttempts()
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		res := attempt(ctx, url)
		if res.ok() {
			return res.body, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var (
			failure   error
			retryable bool
		)
		if res.status != 0 {
			failure = &HTTPStatusError{StatusCode: res.status, URL: url}
			retryable = p.RetryableStatuses[res.status]
		} else {
			if res.err == nil {
				res.err = errNoResponse
			}
			failure = &NetworkError{URL: url, Err: res.err}
			retryable = true
		}
		retryable = retryable && p.RetryableMethods[method]

		if !retryable || n >= limit {
			logger.Warn().Err(failure).Int("attempt", n).Msg("fetch failed")
			return "", failure
		}

		wait := p.Backoff(n)
		if res.retryAfter > wait {
			wait = res.retryAfter
		}
		logger.Debug().Err(failure).Int("attempt", n).Dur("backoff", wait).Msg("fetch failed, retrying")
		if err := sleepContext(ctx, wait); err != nil {
			return "", err
		}
	}
}

// parseRetryAfter 支持秒数与 HTTP-date 两种写法，上限 30 秒
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = t.Sub(now)
	}
	if d < 0 {
		return 0
	}
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
