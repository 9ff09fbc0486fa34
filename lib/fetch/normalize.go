package fetch

import (
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"net/http"
	"net/url"
	"strings"
)

var Logger = logger.GetLogger("fetch")

// Scheme is the private scheme the desktop shell serves bundled assets under
const Scheme = "app"

// normalizedCounter counts targets that actually lost a query
var normalizedCounter = metrics.NewCounter(`caplay_fetch_normalized_total`)

// NeedsNormalization reports whether target must lose its query before it is fetched:
// targets using the private scheme, and targets that are not absolute http(s) URLs
// but carry a query.
func NeedsNormalization(target string) bool {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, Scheme+":") {
		return true
	}
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return false
	}
	return strings.Contains(target, "?")
}

// StripQuery drops everything from the first '?' on
func StripQuery(target string) string {
	before, _, _ := strings.Cut(target, "?")
	return before
}

// Normalize returns input with its target normalized, keeping the input's shape:
//   - string: the normalized string
//   - *url.URL: a new URL
//   - *http.Request: a clone carrying the new URL; method, headers, body and
//     context of the original are kept
//
// Inputs of any other type, inputs that need no normalization and inputs whose
// normalized target does not parse are returned unchanged.
func Normalize(input any) any {
	switch in := input.(type) {
	case string:
		if !NeedsNormalization(in) {
			return in
		}
		out := StripQuery(in)
		countStripped(in, out)
		return out

	case *url.URL:
		if in == nil {
			return input
		}
		if u, ok := normalizeURL(in); ok {
			return u
		}
		return in

	case *http.Request:
		if in == nil || in.URL == nil {
			return input
		}
		u, ok := normalizeURL(in.URL)
		if !ok {
			return in
		}
		out := in.Clone(in.Context())
		out.URL = u
		if u.Host != "" {
			out.Host = u.Host
		}
		return out

	default:
		return input
	}
}

func normalizeURL(u *url.URL) (*url.URL, bool) {
	target := u.String()
	if !NeedsNormalization(target) {
		return nil, false
	}
	stripped := StripQuery(target)
	nu, err := url.Parse(stripped)
	if err != nil {
		Logger.Warningf("normalized target of %q does not parse, passing through: %v", target, err)
		return nil, false
	}
	countStripped(target, stripped)
	return nu, true
}

func countStripped(target, stripped string) {
	if stripped != target {
		normalizedCounter.Inc()
	}
}
