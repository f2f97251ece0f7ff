package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const storyPage = `<html><body>
<article>
  <a href="/articles/abc">Storms hit coast - Daily Times</a>
  <div class="vr1PYe">Daily Times</div>
  <time datetime="2024-03-07T18:30:00Z"></time>
</article>
<article><a href="/articles/def">Second story</a></article>
</body></html>`

func newTestDriver(t *testing.T, handler http.HandlerFunc) *Driver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		BaseURL:      srv.URL,
		FetchMode:    config.FetchModeHTTP,
		FetchTimeout: 2 * time.Second,
		MaxAttempts:  3,
		BackoffBase:  time.Millisecond,
	}
	d, err := Build(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return d
}

func TestNewSearchRequest(t *testing.T) {
	req, err := NewSearchRequest("golang", 250)
	if err != nil {
		t.Fatalf("NewSearchRequest error: %v", err)
	}
	if req.Limit != MaxLimit {
		t.Fatalf("limit = %d, want clamp to %d", req.Limit, MaxLimit)
	}

	if _, err := NewSearchRequest("golang", 0); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("limit 0: err = %v, want ErrInvalidLimit", err)
	}
	if _, err := NewSearchRequest("   ", 5); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("blank query: err = %v, want ErrEmptyQuery", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	var gotQuery string
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(storyPage))
	})

	res, err := d.Run(context.Background(), SearchRequest{Query: " storm coast ", Limit: 5})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if gotQuery != "q=storm+coast&hl=en-US&gl=US&ceid=US%3Aen" {
		t.Fatalf("query string = %q", gotQuery)
	}
	if res.RunID == "" || !strings.HasSuffix(res.SearchURL, gotQuery) {
		t.Fatalf("unexpected result metadata: %+v", res)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}

	first := res.Items[0]
	if first.Title != "Storms hit coast" || first.Publisher != "Daily Times" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if !strings.HasSuffix(first.URL, "/articles/abc") || !strings.HasPrefix(first.URL, "http://") {
		t.Fatalf("url not resolved against origin: %q", first.URL)
	}
	if first.Published != "07 March 2024 18:30:00 UTC" || first.PublishedRaw != "2024-03-07T18:30:00Z" {
		t.Fatalf("timestamp not normalized: %+v", first)
	}
	if res.Items[1].Published != "" || res.Items[1].Publisher != "" {
		t.Fatalf("absent fields should stay empty: %+v", res.Items[1])
	}
}

func TestRunRespectsLimit(t *testing.T) {
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		for i := 1; i <= 10; i++ {
			fmt.Fprintf(w, `<article><a href="/articles/%d">Story %d</a></article>`, i, i)
		}
	})

	res, err := d.Run(context.Background(), SearchRequest{Query: "x", Limit: 3})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Items) != 3 || res.Items[2].Title != "Story 3" {
		t.Fatalf("unexpected items: %+v", res.Items)
	}
}

func TestRunEmptyResultIsNotAnError(t *testing.T) {
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>Consent required</p></body></html>"))
	})

	res, err := d.Run(context.Background(), SearchRequest{Query: "x", Limit: 5})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.Empty() || res.Items == nil {
		t.Fatalf("expected empty non-nil items, got %#v", res.Items)
	}
}

func TestRunSurfacesFetchErrors(t *testing.T) {
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := d.Run(context.Background(), SearchRequest{Query: "x", Limit: 5})
	var statusErr *collector.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected HTTPStatusError 503, got %v", err)
	}
}

func TestRunValidatesBeforeFetching(t *testing.T) {
	called := false
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := d.Run(context.Background(), SearchRequest{Query: "", Limit: 5}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
	if _, err := d.Run(context.Background(), SearchRequest{Query: "x", Limit: -1}); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("err = %v, want ErrInvalidLimit", err)
	}
	if called {
		t.Fatalf("invalid requests must not reach the origin")
	}
}

func TestRunPolitenessDelayHonoursCancellation(t *testing.T) {
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(storyPage))
	})
	d.Delay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := d.Run(ctx, SearchRequest{Query: "x", Limit: 5}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestBuildRejectsUnknownFetchMode(t *testing.T) {
	if _, err := Build(&config.Config{FetchMode: "carrier-pigeon"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown fetch mode")
	}
}

func TestRunWaitsPolitenessDelay(t *testing.T) {
	d := newTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(storyPage))
	})
	d.Delay = 50 * time.Millisecond

	start := time.Now()
	res, err := d.Run(context.Background(), SearchRequest{Query: "x", Limit: 5})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < d.Delay {
		t.Fatalf("Run took %v, want at least the %v delay", elapsed, d.Delay)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items after the delay, got %d", len(res.Items))
	}
}
