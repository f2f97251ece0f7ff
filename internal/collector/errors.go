package collector

import (
	"fmt"
	"net/http"
)

// HTTPStatusError 重试耗尽后仍然拿到非 2xx 响应
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%d %s for url: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// NetworkError 重试耗尽后仍然是网络层失败（DNS、连接被重置、超时等）
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
