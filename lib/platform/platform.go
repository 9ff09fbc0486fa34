package platform

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"runtime"
	"strings"
)

var Logger = logger.GetLogger("platform")

// Platform is the coarse OS family of the host
type Platform string

const (
	Darwin  Platform = "darwin"
	Win32   Platform = "win32"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// Document attribute names set on the root element
const (
	AttrDesktop  = "data-desktop"
	AttrPlatform = "data-platform"
)

// Classify maps a user agent to a platform by substring, checking for macOS first,
// then Windows. Everything else, including an empty string, is Linux.
//
// "darwin" contains "win": the order of the checks matters.
func Classify(userAgent string) Platform {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "mac") || strings.Contains(ua, "darwin"):
		return Darwin
	case strings.Contains(ua, "win"):
		return Win32
	default:
		return Linux
	}
}

// HostUserAgent returns the user agent the shell reports for the machine it runs on
func HostUserAgent() string {
	return fmt.Sprintf("caplay (%s; %s)", runtime.GOOS, runtime.GOARCH)
}

// Info is the result of the detection made once at startup. It is never modified afterwards.
type Info struct {
	desktop   bool
	platform  Platform
	userAgent string
}

// Detect classifies the environment. Outside the desktop shell the platform is
// still derived from the user agent; an empty user agent gives Unknown there,
// since a browser always sends one.
func Detect(userAgent string, desktop bool) *Info {
	p := Classify(userAgent)
	if !desktop && strings.TrimSpace(userAgent) == "" {
		p = Unknown
	}
	Logger.Debugf("detected platform %s (desktop=%v, user agent %q)", p, desktop, userAgent)
	return &Info{desktop: desktop, platform: p, userAgent: userAgent}
}

// Desktop reports whether the UI runs inside the desktop shell
func (i *Info) Desktop() bool {
	return i.desktop
}

// Platform returns the detected platform
func (i *Info) Platform() Platform {
	return i.platform
}

// UserAgent returns the user agent the detection was made from
func (i *Info) UserAgent() string {
	return i.userAgent
}

// Attributes returns the document attributes styling code reads.
// data-desktop is only present in the desktop shell.
func (i *Info) Attributes() map[string]string {
	attrs := map[string]string{AttrPlatform: string(i.platform)}
	if i.desktop {
		attrs[AttrDesktop] = "true"
	}
	return attrs
}

func (i *Info) String() string {
	return fmt.Sprintf("platform=%s desktop=%v", i.platform, i.desktop)
}
