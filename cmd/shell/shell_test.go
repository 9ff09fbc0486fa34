package shell

import (
	"context"
	"github.com/caplayground/caplay/lib/platform"
	"github.com/caplayground/caplay/lib/runtime"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

var testAssets = fstest.MapFS{
	"index.html":      {Data: []byte(`<!DOCTYPE html><html lang="en"><head></head><body><div id="root"></div></body></html>`)},
	"docs/index.html": {Data: []byte(`<html><body>docs</body></html>`)},
	"app.js":          {Data: []byte(`console.log("hi")`)},
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Result().Body)
	return rec.Code, string(body)
}

func TestUIHandler(t *testing.T) {
	h := newUIHandler(testAssets, platform.Detect("Mozilla/5.0 (Windows NT 10.0; Win64; x64)", true))

	tests := []struct {
		name     string
		path     string
		wantCode int
		want     []string
	}{
		{"root document", "/", http.StatusOK, []string{`data-desktop="true"`, `data-platform="win32"`, `<div id="root">`}},
		{"explicit document", "/index.html", http.StatusOK, []string{`data-platform="win32"`}},
		{"directory index", "/docs/", http.StatusOK, []string{`data-platform="win32"`, "docs"}},
		{"script untouched", "/app.js", http.StatusOK, []string{`console.log("hi")`}},
		{"missing document", "/missing.html", http.StatusNotFound, nil},
		{"missing file", "/missing.js", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := get(t, h, tt.path)
			if code != tt.wantCode {
				t.Fatalf("GET %s: status %d, want %d", tt.path, code, tt.wantCode)
			}
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("GET %s: body %q does not contain %q", tt.path, body, w)
				}
			}
		})
	}
}

func TestUIHandlerOutsideDesktop(t *testing.T) {
	h := newUIHandler(testAssets, platform.Detect("Mozilla/5.0 (X11; Linux x86_64)", false))

	_, body := get(t, h, "/")
	if strings.Contains(body, "data-desktop") {
		t.Errorf("data-desktop set outside the desktop shell: %q", body)
	}
	if !strings.Contains(body, `data-platform="linux"`) {
		t.Errorf("data-platform missing: %q", body)
	}
}

func TestMuxServesMetrics(t *testing.T) {
	rt, err := runtime.Bootstrap(runtime.Config{Desktop: true, UserAgent: "Macintosh"})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	defer rt.Close()

	srv := httptest.NewServer(newMux(testAssets, rt))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "go_goroutines") {
		t.Errorf("GET /metrics: status %d, body %.200q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `data-platform="darwin"`) {
		t.Errorf("GET /: %q", body)
	}
}

func TestHeadlessWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := newHeadlessWindow(cancel)

	steps := []struct {
		op   func() error
		want string
	}{
		{w.Maximize, stateMaximized},
		{w.Maximize, stateNormal},
		{w.Minimize, stateMinimized},
		{w.Maximize, stateMaximized},
	}
	for i, s := range steps {
		if err := s.op(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got := w.State(); got != s.want {
			t.Errorf("step %d: state %s, want %s", i, got, s.want)
		}
	}

	if ctx.Err() != nil {
		t.Fatal("context canceled before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ctx.Err() == nil {
		t.Error("Close did not stop the shell")
	}
}
