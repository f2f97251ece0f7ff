package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/pipeline"
	"github.com/LJTian/NewsLens/internal/processor"
	"github.com/pkg/errors"
)

func TestPromptRequest(t *testing.T) {
	cases := []struct {
		input string
		query string
		limit int
	}{
		{"storm coast\n\n", "storm coast", pipeline.DefaultLimit},
		{"  storm  \n12\n", "storm", 12},
		{"storm\n500\n", "storm", pipeline.MaxLimit},
		{"storm\n3", "storm", 3},
	}

	for _, c := range cases {
		var out bytes.Buffer
		req, err := promptRequest(strings.NewReader(c.input), &out)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c.input, err)
		}
		if req.Query != c.query || req.Limit != c.limit {
			t.Fatalf("%q: got %+v", c.input, req)
		}
		if !strings.Contains(out.String(), "Search term: ") ||
			!strings.Contains(out.String(), "How many results? (press Enter for 5, max 100): ") {
			t.Fatalf("%q: unexpected prompts %q", c.input, out.String())
		}
	}
}

func TestPromptRequestErrors(t *testing.T) {
	var out bytes.Buffer

	if _, err := promptRequest(strings.NewReader("   \n"), &out); !errors.Is(err, pipeline.ErrEmptyQuery) {
		t.Fatalf("blank term: got %v", err)
	}
	if _, err := promptRequest(strings.NewReader("storm\nabc\n"), &out); err == nil {
		t.Fatalf("expected error for non-numeric count")
	}
	if _, err := promptRequest(strings.NewReader("storm\n0\n"), &out); !errors.Is(err, pipeline.ErrInvalidLimit) {
		t.Fatalf("zero count: got %v", err)
	}
	if _, err := promptRequest(strings.NewReader(""), &out); !errors.Is(err, io.EOF) {
		t.Fatalf("closed input: got %v", err)
	}
}

func TestInputFailure(t *testing.T) {
	cases := []struct {
		err  error
		code int
		done bool
		msg  string
	}{
		{nil, 0, false, ""},
		{context.Canceled, 0, true, "Cancelled."},
		{io.EOF, 0, true, "Cancelled."},
		{pipeline.ErrEmptyQuery, 1, true, "Search term cannot be empty."},
		{pipeline.ErrInvalidLimit, 1, true, "Invalid input: result count must be at least 1"},
	}

	for _, c := range cases {
		var out bytes.Buffer
		code, done := inputFailure(&out, c.err)
		if code != c.code || done != c.done || !strings.Contains(out.String(), c.msg) {
			t.Fatalf("%v: code=%d done=%v out=%q", c.err, code, done, out.String())
		}
	}
}

type stubSearcher struct {
	res *pipeline.Result
	err error
}

func (s stubSearcher) Run(ctx context.Context, req pipeline.SearchRequest) (*pipeline.Result, error) {
	return s.res, s.err
}

func TestRunSearch(t *testing.T) {
	req := pipeline.SearchRequest{Query: "storm coast", Limit: 5}
	items := []processor.ProcessedNews{{
		Title:     "Storms hit coast",
		URL:       "https://news.google.com/articles/abc",
		Publisher: "Daily Times",
		Published: "15 March 2024 10:30:00 UTC",
	}}

	cases := []struct {
		name string
		s    stubSearcher
		code int
		want []string
	}{
		{"ok", stubSearcher{res: &pipeline.Result{Items: items}}, 0, []string{
			"Google News search: https://news.google.com/search?q=storm+coast&hl=en-US&gl=US&ceid=US%3Aen",
			"1. Storms hit coast",
			"   Source    : Daily Times",
			"   Published : 15 March 2024 10:30:00 UTC",
			"   Link      : https://news.google.com/articles/abc",
		}},
		{"empty", stubSearcher{res: &pipeline.Result{}}, 0, []string{processor.NoResultsMessage}},
		{"http", stubSearcher{err: &collector.HTTPStatusError{StatusCode: 503, URL: "u"}}, 1, []string{"HTTP error: 503"}},
		{"network", stubSearcher{err: &collector.NetworkError{URL: "u", Err: errors.New("reset")}}, 1, []string{"Network error: "}},
		{"cancelled", stubSearcher{err: context.Canceled}, 0, []string{"Cancelled."}},
	}

	for _, c := range cases {
		var out bytes.Buffer
		code := runSearch(context.Background(), c.s, collector.DefaultBaseURL, req, false, &out)
		if code != c.code {
			t.Fatalf("%s: exit code = %d, want %d", c.name, code, c.code)
		}
		for _, w := range c.want {
			if !strings.Contains(out.String(), w) {
				t.Fatalf("%s: output %q missing %q", c.name, out.String(), w)
			}
		}
	}
}

func TestRunSearchJSON(t *testing.T) {
	var out bytes.Buffer
	s := stubSearcher{res: &pipeline.Result{RunID: "r1", Items: []processor.ProcessedNews{{Title: "t", URL: "u"}}}}
	if code := runSearch(context.Background(), s, collector.DefaultBaseURL, pipeline.SearchRequest{Query: "x", Limit: 1}, true, &out); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.Contains(out.String(), "Google News search:") {
		t.Fatalf("JSON output should not carry the banner: %q", out.String())
	}
	if !strings.Contains(out.String(), `"runId": "r1"`) {
		t.Fatalf("unexpected JSON: %q", out.String())
	}
}

func TestWatchRequests(t *testing.T) {
	reqs, err := watchRequests([]string{"a", "b"}, 500)
	if err != nil || len(reqs) != 2 || reqs[1].Limit != pipeline.MaxLimit {
		t.Fatalf("got %+v, %v", reqs, err)
	}
	if _, err := watchRequests(nil, 5); !errors.Is(err, pipeline.ErrEmptyQuery) {
		t.Fatalf("no queries: got %v", err)
	}
	if _, err := watchRequests([]string{"a", " "}, 5); !errors.Is(err, pipeline.ErrEmptyQuery) {
		t.Fatalf("blank query: got %v", err)
	}
}
