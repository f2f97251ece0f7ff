package api

import (
	"context"
	"net/http"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/pipeline"
	"github.com/LJTian/NewsLens/internal/processor"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Searcher 执行一次搜索，*pipeline.Driver 满足该接口
type Searcher interface {
	Run(ctx context.Context, req pipeline.SearchRequest) (*pipeline.Result, error)
}

type Server struct {
	searcher Searcher
	logger   zerolog.Logger
}

func NewServer(searcher Searcher, logger zerolog.Logger) *Server {
	return &Server{searcher: searcher, logger: logger}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/search", s.search)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type searchQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit,default=5"`
}

func (s *Server) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "invalid_request",
			"message": "q is required and limit must be a number",
		})
		return
	}

	req, err := pipeline.NewSearchRequest(q.Q, q.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "invalid_request",
			"message": err.Error(),
		})
		return
	}

	res, err := s.searcher.Run(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if res.Empty() {
		c.JSON(http.StatusOK, gin.H{
			"code":    "no_results",
			"message": processor.NoResultsMessage,
			"data":    res,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    res,
	})
}

// statusClientClosedRequest 客户端在响应前断开连接
const statusClientClosedRequest = 499

// writeError 源站状态码错误与网络错误分别返回，便于调用方区分
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		statusErr *collector.HTTPStatusError
		netErr    *collector.NetworkError
	)
	switch {
	case errors.Is(err, context.Canceled):
		s.logger.Debug().Err(err).Msg("client went away, search aborted")
		c.AbortWithStatus(statusClientClosedRequest)
	case errors.As(err, &statusErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"code":           "http_status_error",
			"message":        statusErr.Error(),
			"upstreamStatus": statusErr.StatusCode,
		})
	case errors.As(err, &netErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    "network_error",
			"message": netErr.Error(),
		})
	default:
		s.logger.Error().Err(err).Msg("search failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
	}
}
