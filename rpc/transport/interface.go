package transport

import (
	"context"
	"github.com/caplayground/caplay/rpc/common"
	"net"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes a channelId and a request as parameters and returns a response
type ServerHandleFunc func(channelId uint64, req []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer of the bridge server
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler should be called when a request is received
	RegisterHandler(handler ServerHandleFunc)
	// Listen opens the configured endpoint and serves until Shutdown is called
	Listen(config common.ServerConfig) error
	// Serve serves requests on an already open listener until Shutdown is called
	Serve(l net.Listener) error
	// Shutdown stops the transport, waiting for in-flight requests until ctx is done
	Shutdown(ctx context.Context) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request to the server and returns the response
	Send(channelId uint64, req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
