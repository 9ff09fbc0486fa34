package http

import (
	"context"
	"errors"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.ServerConfig

	mu     sync.Mutex
	server *http.Server
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	t.config = config

	l, err := listen(config.Endpoint)
	if err != nil {
		return err
	}

	Logger.Infof("Starting HTTP bridge server on %s", config.Endpoint)
	return t.Serve(l)
}

func (t *httpServerTransport) Serve(l net.Listener) error {
	mux := http.NewServeMux()

	// Register handler
	if t.config.LogLevel == "debug" {
		mux.HandleFunc("POST /{channelId}", loggerMiddleware(t.handleRequest))
	} else {
		mux.HandleFunc("POST /{channelId}", t.handleRequest)
	}

	t.mu.Lock()
	t.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := t.server
	t.mu.Unlock()

	if err := server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (t *httpServerTransport) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	server := t.server
	t.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// listen opens a tcp or unix listener for the endpoint.
// A stale unix socket file left by a crashed shell is removed first.
func listen(endpoint string) (net.Listener, error) {
	if path, ok := strings.CutPrefix(endpoint, "unix:"); ok {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return net.Listen("unix", path)
	}
	return net.Listen("tcp", strings.TrimPrefix(endpoint, "http://"))
}

// handleRequest handles incoming HTTP requests and writes the response to the writer
func (t *httpServerTransport) handleRequest(w http.ResponseWriter, r *http.Request) {
	channelId, err := strconv.ParseUint(r.PathValue("channelId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid channelId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return
	}

	if t.handler == nil {
		http.Error(w, "No handler registered", http.StatusServiceUnavailable)
		return
	}

	resp := t.handler(channelId, body)

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err = w.Write(resp); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
