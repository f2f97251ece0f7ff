package main

import (
	"fmt"
	"os"

	"github.com/LJTian/NewsLens/internal/api"
	"github.com/LJTian/NewsLens/internal/config"
	"github.com/LJTian/NewsLens/internal/logger"
	"github.com/LJTian/NewsLens/internal/pipeline"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}

	driver, err := pipeline.Build(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init pipeline failed")
	}

	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	api.NewServer(driver, log).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Str("fetcher", driver.Fetcher.Name()).Msg("starting api server...")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
