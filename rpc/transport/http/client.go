package http

import (
	"bytes"
	"context"
	"fmt"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/transport"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

// endpoint is a resolved server address with the client used to reach it
type endpoint struct {
	baseURL string
	client  *http.Client
}

type httpClientTransport struct {
	endpoints  []endpoint
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("http transport: no endpoints configured")
	}

	timeout := time.Duration(config.TimeoutSecond) * time.Second
	endpoints := make([]endpoint, 0, len(config.Endpoints))
	for _, raw := range config.Endpoints {
		ep, err := newEndpoint(strings.TrimSpace(raw), timeout)
		if err != nil {
			return err
		}
		endpoints = append(endpoints, ep)
	}

	t.endpoints = endpoints
	t.counter = 0
	t.retryCount = max(config.RetryCount, 1)

	return nil
}

func (t *httpClientTransport) Send(channelId uint64, req []byte) (resp []byte, err error) {
	// Check if the transport is initialized
	if len(t.endpoints) == 0 {
		return nil, fmt.Errorf("http transport not initialized")
	}

	// Select the next server via round-robin
	idx := atomic.AddUint32(&t.counter, 1) % uint32(len(t.endpoints))
	ep := t.endpoints[idx]
	requestURL := fmt.Sprintf("%s/%d", ep.baseURL, channelId)

	// Send the request (with retries), the body is recreated for every attempt
	var httpResponse *http.Response
	for i := 0; i < t.retryCount; i++ {
		var httpRequest *http.Request
		httpRequest, err = http.NewRequest(http.MethodPost, requestURL, bytes.NewReader(req))
		if err != nil {
			return nil, err
		}
		httpRequest.Header.Set("Content-Type", "application/octet-stream")

		httpResponse, err = ep.client.Do(httpRequest)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Check if the response status code is OK
	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}

	return io.ReadAll(httpResponse.Body)
}

func (t *httpClientTransport) Close() error {
	for _, ep := range t.endpoints {
		ep.client.CloseIdleConnections()
	}
	t.endpoints = nil
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// newEndpoint resolves an endpoint string to a base URL and a client.
// Unix socket endpoints get a client whose dialer ignores the URL host.
func newEndpoint(raw string, timeout time.Duration) (endpoint, error) {
	if path, ok := strings.CutPrefix(raw, "unix:"); ok {
		if path == "" {
			return endpoint{}, fmt.Errorf("invalid unix endpoint %q", raw)
		}
		dialer := &net.Dialer{Timeout: timeout}
		return endpoint{
			baseURL: "http://unix",
			client: &http.Client{
				Timeout: timeout,
				Transport: &http.Transport{
					DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
						return dialer.DialContext(ctx, "unix", path)
					},
					MaxIdleConnsPerHost: 4,
					IdleConnTimeout:     timeout,
				},
			},
		}, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return endpoint{}, err
	}
	if parsed.Host == "" {
		return endpoint{}, fmt.Errorf("invalid endpoint %q", raw)
	}

	return endpoint{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     timeout,
			},
		},
	}, nil
}
