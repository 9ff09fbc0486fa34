package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware returns a RoundTripper that normalizes every request before passing
// it to next. A nil next means http.DefaultTransport.
func Middleware(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if out, ok := Normalize(req).(*http.Request); ok && out != nil {
			req = out
		}
		return next.RoundTrip(req)
	})
}

// Install puts the normalizer in front of the client's transport when running in
// the desktop shell, and leaves the client alone otherwise.
func Install(client *http.Client, desktop bool) {
	if client == nil || !desktop {
		return
	}
	client.Transport = Middleware(client.Transport)
	Logger.Debugf("resource url normalizer installed")
}

// NewClient returns a new client with the private scheme registered on its
// transport and the normalizer installed if desktop is set.
func NewClient(assets http.RoundTripper, desktop bool) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if assets != nil {
		base.RegisterProtocol(Scheme, assets)
	}
	client := &http.Client{Transport: base}
	Install(client, desktop)
	return client
}

// Fetcher issues requests the way the UI does: by string, URL or prepared request.
type Fetcher struct {
	// Client sends the requests, http.DefaultClient if nil
	Client *http.Client
	// Base resolves relative targets
	Base *url.URL
	// Normalize normalizes targets before they are resolved against Base,
	// so relative targets with a query lose it too
	Normalize bool
}

// Fetch sends a GET for a string or *url.URL input, or sends an *http.Request as is
// (bound to ctx).
func (f *Fetcher) Fetch(ctx context.Context, input any) (*http.Response, error) {
	if f.Normalize {
		input = Normalize(input)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	var req *http.Request
	switch in := input.(type) {
	case string:
		u, err := url.Parse(in)
		if err != nil {
			return nil, fmt.Errorf("parse target %q: %w", in, err)
		}
		if req, err = http.NewRequestWithContext(ctx, http.MethodGet, f.resolve(u).String(), nil); err != nil {
			return nil, err
		}
	case *url.URL:
		var err error
		if req, err = http.NewRequestWithContext(ctx, http.MethodGet, f.resolve(in).String(), nil); err != nil {
			return nil, err
		}
	case *http.Request:
		req = in.WithContext(ctx)
		if !req.URL.IsAbs() {
			req.URL = f.resolve(req.URL)
		}
	default:
		return nil, fmt.Errorf("unsupported fetch input %T", input)
	}

	return client.Do(req)
}

func (f *Fetcher) resolve(u *url.URL) *url.URL {
	if f.Base == nil || u.IsAbs() {
		return u
	}
	return f.Base.ResolveReference(u)
}
