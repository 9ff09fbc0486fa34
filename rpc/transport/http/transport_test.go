package http

import (
	"bytes"
	"context"
	"fmt"
	"github.com/caplayground/caplay/rpc/common"
	"net"
	"path/filepath"
	"testing"
	"time"
)

// startEchoServer serves a handler that prefixes the request with the channel id
func startEchoServer(t *testing.T, l net.Listener) {
	t.Helper()

	server := NewHttpServerTransport()
	server.RegisterHandler(func(channelId uint64, req []byte) []byte {
		return append([]byte(fmt.Sprintf("%d:", channelId)), req...)
	})

	go func() {
		if err := server.Serve(l); err != nil {
			t.Errorf("Serve failed: %v", err)
		}
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})
}

func sendAndCheck(t *testing.T, endpoint string) {
	t.Helper()

	client := NewHttpClientTransport()
	if err := client.Connect(common.ClientConfig{
		Endpoints:     []string{endpoint},
		TimeoutSecond: 2,
		RetryCount:    3,
	}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	resp, err := client.Send(7, []byte("ping"))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !bytes.Equal(resp, []byte("7:ping")) {
		t.Errorf("Expected 7:ping, got %s", resp)
	}
}

func TestTCPRoundTrip(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	startEchoServer(t, l)

	sendAndCheck(t, l.Addr().String())
	sendAndCheck(t, "http://"+l.Addr().String())
}

func TestUnixRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.sock")
	l, err := listen("unix:" + path)
	if err != nil {
		t.Skipf("unix sockets not available: %v", err)
	}
	startEchoServer(t, l)

	sendAndCheck(t, "unix:"+path)
}

func TestSendWithoutConnect(t *testing.T) {
	if _, err := NewHttpClientTransport().Send(1, nil); err == nil {
		t.Errorf("Expected Send on an unconnected transport to fail")
	}
}

func TestConnectValidation(t *testing.T) {
	for _, endpoints := range [][]string{nil, {"unix:"}, {"http://"}} {
		if err := NewHttpClientTransport().Connect(common.ClientConfig{Endpoints: endpoints}); err == nil {
			t.Errorf("Expected Connect(%v) to fail", endpoints)
		}
	}
}
