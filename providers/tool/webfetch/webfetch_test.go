package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<html><body><h1>State Graphs</h1><p>Nodes return <strong>partial</strong> updates.</p></body></html>`

func TestFetch_ConvertsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	fetcher := NewFetcher(WithHTTPClient(server.Client()), WithUserAgent("test-agent"))
	output, err := fetcher.Fetch(context.Background(), Input{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(output.Markdown, "# State Graphs") {
		t.Errorf("Markdown missing heading: %q", output.Markdown)
	}
	if !strings.Contains(output.Markdown, "**partial**") {
		t.Errorf("Markdown missing emphasis: %q", output.Markdown)
	}
	if output.URL != server.URL {
		t.Errorf("URL = %q, want %q", output.URL, server.URL)
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<p>moved</p>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	output, err := NewFetcher().Fetch(context.Background(), Input{URL: server.URL + "/old"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.HasSuffix(output.URL, "/new") {
		t.Errorf("URL = %q, want redirect target", output.URL)
	}
}

func TestFetch_Truncates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("a", 100) + "</p>"))
	}))
	defer server.Close()

	output, err := NewFetcher().Fetch(context.Background(), Input{URL: server.URL, MaxChars: 10})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !output.Truncated || len(output.Markdown) != 10 {
		t.Errorf("output = %+v", output)
	}
}

func TestFetch_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer server.Close()

	if _, err := NewFetcher().Fetch(context.Background(), Input{URL: "  "}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := NewFetcher().Fetch(context.Background(), Input{URL: server.URL}); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestWebFetchTool_Info(t *testing.T) {
	info := NewWebFetchTool().Info()
	if info.Name != "webfetch" {
		t.Errorf("Name = %q", info.Name)
	}
	if len(info.Parameters.Required) != 1 || info.Parameters.Required[0] != "url" {
		t.Errorf("Required = %v", info.Parameters.Required)
	}
}
