package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

type Config struct {
	AppPort string

	// 配置后整个 API 启用 Basic Auth（/health 除外）
	BasicAuthUser string
	BasicAuthPass string

	BaseURL         string
	FetchMode       string
	BrowserExecPath string
	FetchTimeout    time.Duration
	MaxAttempts     int
	BackoffBase     time.Duration
	PolitenessDelay time.Duration

	LogLevel      string
	SelectorsFile string
	WatchSpec     string
}

func Load() *Config {
	return &Config{
		AppPort:         getEnv("APP_PORT", "9000"),
		BasicAuthUser:   getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:   getEnv("APP_BASIC_PASS", ""),
		BaseURL:         getEnv("NEWS_BASE_URL", collector.DefaultBaseURL),
		FetchMode:       strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		BrowserExecPath: getEnv("BROWSER_EXEC_PATH", ""),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", collector.DefaultFetchTimeout),
		MaxAttempts:     getEnvInt("FETCH_MAX_ATTEMPTS", 3),
		BackoffBase:     getEnvDuration("FETCH_BACKOFF_BASE", 800*time.Millisecond),
		PolitenessDelay: getEnvDuration("POLITENESS_DELAY", 800*time.Millisecond),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SelectorsFile:   getEnv("SELECTORS_FILE", ""),
		WatchSpec:       getEnv("WATCH_SPEC", "*/30 * * * *"),
	}
}

// FetchConfig 由配置生成抓取器使用的只读配置
func (c *Config) FetchConfig() collector.FetchConfig {
	fc := collector.DefaultFetchConfig()
	fc.Timeout = c.FetchTimeout
	if c.MaxAttempts > 0 {
		fc.Policy.MaxAttempts = c.MaxAttempts
	}
	if c.BackoffBase >= 0 {
		fc.Policy.BackoffBase = c.BackoffBase
	}
	return fc
}

// Selectors 默认选择器叠加 SELECTORS_FILE 中的覆盖项
func (c *Config) Selectors() (collector.Selectors, error) {
	sel := collector.DefaultSelectors()
	if c.SelectorsFile == "" {
		return sel, nil
	}
	override, err := LoadSelectors(c.SelectorsFile)
	if err != nil {
		return sel, err
	}
	return sel.Merge(override), nil
}

// LoadSelectors 读取 YAML 格式的选择器覆盖文件，只需写出要改的字段
func LoadSelectors(path string) (collector.Selectors, error) {
	var sel collector.Selectors
	data, err := os.ReadFile(path)
	if err != nil {
		return sel, errors.Wrapf(err, "read selectors file %s", path)
	}
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return sel, errors.Wrapf(err, "parse selectors file %s", path)
	}
	return sel, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getEnvDuration 支持 "800ms"、"10s" 这类写法，纯数字按秒处理
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return def
}
