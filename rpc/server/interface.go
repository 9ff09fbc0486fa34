package server

import (
	"github.com/caplayground/caplay/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses of one channel
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response.
	// If an error occurs, it should be set in the response
	Handle(req *common.Message) (resp *common.Message)
}

// WindowController is the window of the desktop shell, as far as the embedded UI may control it
type WindowController interface {
	Close() error
	Minimize() error
	Maximize() error
}
