package platform

import (
	"runtime"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		ua   string
		want Platform
	}{
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15", Darwin},
		{"caplay (darwin; arm64)", Darwin},
		{"DARWIN", Darwin},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", Win32},
		{"caplay (windows; amd64)", Win32},
		{"Mozilla/5.0 (X11; Linux x86_64)", Linux},
		{"Mozilla/5.0 (X11; FreeBSD amd64)", Linux},
		{"", Linux},
		// mac is checked first
		{"mac on windows", Darwin},
	}

	for _, tt := range tests {
		if got := Classify(tt.ua); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.ua, got, tt.want)
		}
	}
}

func TestHostUserAgent(t *testing.T) {
	want := map[string]Platform{"darwin": Darwin, "windows": Win32, "linux": Linux}[runtime.GOOS]
	if want == "" {
		want = Linux
	}
	if got := Classify(HostUserAgent()); got != want {
		t.Errorf("Classify(HostUserAgent()) = %s, want %s", got, want)
	}
}

func TestDetect(t *testing.T) {
	desktop := Detect("caplay (darwin; arm64)", true)
	if !desktop.Desktop() || desktop.Platform() != Darwin {
		t.Errorf("Detect = %s", desktop)
	}
	attrs := desktop.Attributes()
	if attrs[AttrDesktop] != "true" || attrs[AttrPlatform] != "darwin" {
		t.Errorf("Attributes() = %v", attrs)
	}

	browser := Detect("Mozilla/5.0 (Windows NT 10.0)", false)
	if browser.Desktop() || browser.Platform() != Win32 {
		t.Errorf("Detect = %s", browser)
	}
	if _, ok := browser.Attributes()[AttrDesktop]; ok {
		t.Error("data-desktop set outside the desktop shell")
	}

	if p := Detect("", false).Platform(); p != Unknown {
		t.Errorf("Detect(\"\", false) = %s, want unknown", p)
	}
	if p := Detect("", true).Platform(); p != Linux {
		t.Errorf("Detect(\"\", true) = %s, want linux", p)
	}
}

func TestInjectAttributes(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		attrs   map[string]string
		want    []string
		notWant []string
	}{
		{
			name:  "plain",
			in:    `<!DOCTYPE html><html lang="en"><head></head><body><div id="root"></div></body></html>`,
			attrs: map[string]string{AttrDesktop: "true", AttrPlatform: "win32"},
			want:  []string{`<html lang="en" data-desktop="true" data-platform="win32">`, `<div id="root"></div>`},
		},
		{
			name:    "replace",
			in:      `<html data-platform="linux"><body></body></html>`,
			attrs:   map[string]string{AttrPlatform: "darwin"},
			want:    []string{`data-platform="darwin"`},
			notWant: []string{`data-platform="linux"`},
		},
		{
			name:  "fragment",
			in:    `<p>hi</p>`,
			attrs: map[string]string{AttrPlatform: "linux"},
			want:  []string{`<html data-platform="linux">`, `<p>hi</p>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := InjectAttributes(strings.NewReader(tt.in), tt.attrs)
			if err != nil {
				t.Fatalf("InjectAttributes failed: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(out), w) {
					t.Errorf("output %s does not contain %s", out, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(string(out), w) {
					t.Errorf("output %s contains %s", out, w)
				}
			}
		})
	}
}
