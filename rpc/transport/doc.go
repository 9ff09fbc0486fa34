// Package transport defines the interfaces for the bridge RPC channel between
// the web UI contexts and the desktop shell hosting them.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Supporting channel-based request routing (window commands, remote store)
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to the registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// The http sub package is the only implementation; it speaks HTTP over TCP or over
// a unix domain socket (endpoint "unix:/path/to.sock").
package transport
