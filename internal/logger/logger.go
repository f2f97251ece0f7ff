// Package logger 构造命令行与服务共用的 zerolog 日志器
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ParseLevel 支持 trace/debug/info/warn/error/fatal/panic，空串视为 info
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}

// New 输出到 w 的控制台格式日志器
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
