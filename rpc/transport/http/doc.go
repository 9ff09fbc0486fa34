// Package http implements an HTTP-based transport layer for the bridge RPC channel.
//
// The package focuses on:
//   - Client-side HTTP transport for sending RPC requests to the shell
//   - Server-side HTTP transport for receiving and handling RPC requests
//   - Round-robin selection across multiple endpoints and request retries
//   - Request routing based on channel IDs (POST /{channelId})
//
// Endpoints:
//
//	host:port, http://host:port   TCP
//	unix:/path/to/caplay.sock     unix domain socket (both client and server)
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It uses
//	atomic operations for the round-robin counter.
package http
