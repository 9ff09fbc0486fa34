package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
)

func TestNeedsNormalization(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"app://assets/img.png?v=2", true},
		{"app://assets/img.png", true},
		{"APP://assets/x.js?1", true},
		{"https://example.com/a?b=1", false},
		{"http://localhost:3000/?x", false},
		{"/assets/img.png?v=2", true},
		{"img.png?v=2", true},
		{"img.png", false},
		{"", false},
		{"data:text/plain,hi?", true},
	}

	for _, tt := range tests {
		if got := NeedsNormalization(tt.target); got != tt.want {
			t.Errorf("NeedsNormalization(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestStripQuery(t *testing.T) {
	tests := map[string]string{
		"app://assets/img.png?v=2":  "app://assets/img.png",
		"a?b?c":                     "a",
		"no-query":                  "no-query",
		"x?":                        "x",
		"app://a/b.css?v=1#section": "app://a/b.css",
	}
	for in, want := range tests {
		if got := StripQuery(in); got != want {
			t.Errorf("StripQuery(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizedCounter(t *testing.T) {
	mustURL := func(raw string) *url.URL {
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("url.Parse(%q): %v", raw, err)
		}
		return u
	}

	tests := []struct {
		name  string
		input any
		want  uint64
	}{
		{"string with query", "app://assets/a.png?v=2", 1},
		{"string without query", "app://assets/a.png", 0},
		{"url with query", mustURL("app://assets/a.png?v=2"), 1},
		{"url without query", mustURL("app://assets/a.png"), 0},
		{"absolute http", "https://example.com/a?b=1", 0},
		{"relative with query", "img.png?v=2", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := normalizedCounter.Get()
			Normalize(tt.input)
			if got := normalizedCounter.Get() - before; got != tt.want {
				t.Errorf("counter moved by %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeShapes(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		if got := Normalize("app://assets/img.png?v=2"); got != "app://assets/img.png" {
			t.Errorf("Normalize = %v", got)
		}
		if got := Normalize("https://example.com/a?b=1"); got != "https://example.com/a?b=1" {
			t.Errorf("Normalize = %v", got)
		}
	})

	t.Run("url", func(t *testing.T) {
		in, _ := url.Parse("app://assets/img.png?v=2")
		got, ok := Normalize(in).(*url.URL)
		if !ok || got.String() != "app://assets/img.png" {
			t.Fatalf("Normalize = %v", got)
		}
		if in.RawQuery != "v=2" {
			t.Error("input URL was modified")
		}
	})

	t.Run("request", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
		in, _ := http.NewRequestWithContext(ctx, http.MethodPost, "app://assets/upload?v=2", strings.NewReader("payload"))
		in.Header.Set("X-Test", "1")

		got, ok := Normalize(in).(*http.Request)
		if !ok {
			t.Fatal("Normalize did not return a request")
		}
		if got.URL.String() != "app://assets/upload" {
			t.Errorf("URL = %s", got.URL)
		}
		if got.Method != http.MethodPost || got.Header.Get("X-Test") != "1" || got.Context() != ctx {
			t.Errorf("request fields not preserved: %s %v", got.Method, got.Header)
		}
		body, _ := io.ReadAll(got.Body)
		if string(body) != "payload" {
			t.Errorf("body = %q", body)
		}
		if in.URL.RawQuery != "v=2" {
			t.Error("input request was modified")
		}
	})

	t.Run("passthrough", func(t *testing.T) {
		for _, in := range []any{42, nil, []byte("app://x?y"), (*url.URL)(nil)} {
			got := Normalize(in)
			if b, ok := in.([]byte); ok {
				if string(got.([]byte)) != string(b) {
					t.Errorf("Normalize(%v) = %v", in, got)
				}
				continue
			}
			if got != in {
				t.Errorf("Normalize(%v) = %v", in, got)
			}
		}
	})
}

type ctxKey struct{}

// recorder answers every request with 204 and remembers the targets
type recorder struct {
	targets []string
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	r.targets = append(r.targets, req.URL.String())
	return newResponse(req, http.StatusNoContent, "text/plain", nil), nil
}

func TestMiddleware(t *testing.T) {
	rec := &recorder{}
	client := &http.Client{Transport: rec}
	Install(client, true)

	fetcher := &Fetcher{Client: client}
	for _, target := range []string{"app://assets/img.png?v=2", "https://example.com/a?b=1"} {
		resp, err := fetcher.Fetch(context.Background(), target)
		if err != nil {
			t.Fatalf("Fetch(%s) failed: %v", target, err)
		}
		resp.Body.Close()
	}

	want := []string{"app://assets/img.png", "https://example.com/a?b=1"}
	if len(rec.targets) != 2 || rec.targets[0] != want[0] || rec.targets[1] != want[1] {
		t.Errorf("transport saw %v, want %v", rec.targets, want)
	}
}

func TestInstallOutsideDesktop(t *testing.T) {
	rec := &recorder{}
	client := &http.Client{Transport: rec}
	Install(client, false)
	if client.Transport != rec {
		t.Fatal("transport replaced outside the desktop shell")
	}

	req, _ := http.NewRequest(http.MethodGet, "app://assets/img.png?v=2", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()
	if rec.targets[0] != "app://assets/img.png?v=2" {
		t.Errorf("transport saw %s", rec.targets[0])
	}
}

func TestFetcherRelativeTargets(t *testing.T) {
	rec := &recorder{}
	base, _ := url.Parse("app://ui/editor/")
	fetcher := &Fetcher{Client: &http.Client{Transport: rec}, Base: base, Normalize: true}

	resp, err := fetcher.Fetch(context.Background(), "thumb.png?size=2")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	resp.Body.Close()

	if rec.targets[0] != "app://ui/editor/thumb.png" {
		t.Errorf("transport saw %s", rec.targets[0])
	}

	if _, err := fetcher.Fetch(context.Background(), 42); err == nil {
		t.Error("expected error for unsupported input")
	}
}

func TestSchemeTransport(t *testing.T) {
	assets := fstest.MapFS{
		"index.html":           {Data: []byte("<html></html>")},
		"assets/img.png":       {Data: []byte("\x89PNG\r\n\x1a\n")},
		"assets/app.js":        {Data: []byte("console.log(1)")},
		"editor/index.html":    {Data: []byte("<html>editor</html>")},
		"assets/style.min.css": {Data: []byte("body{}")},
	}

	tests := []struct {
		name     string
		desktop  bool
		target   string
		wantCode int
		wantBody string
	}{
		{"file", true, "app://assets/app.js", http.StatusOK, "console.log(1)"},
		{"query stripped in desktop mode", true, "app://assets/app.js?v=2", http.StatusOK, "console.log(1)"},
		{"query rejected without normalizer", false, "app://assets/app.js?v=2", http.StatusBadRequest, ""},
		{"root", true, "app://", http.StatusOK, "<html></html>"},
		{"directory", true, "app://editor/", http.StatusOK, "<html>editor</html>"},
		{"missing", true, "app://assets/none.png", http.StatusNotFound, ""},
		{"escape", true, "app://assets/../../etc/passwd", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(NewSchemeTransport(assets), tt.desktop)
			resp, err := client.Get(tt.target)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
			}
		})
	}

	resp, err := NewSchemeTransport(assets).RoundTrip(&http.Request{Method: http.MethodPost, URL: &url.URL{Scheme: Scheme, Host: "assets", Path: "/app.js"}})
	if err != nil || resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST = %v, %v", resp, err)
	}
}
