package client

import (
	"fmt"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/serializer"
	"github.com/caplayground/caplay/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the RPCStore and WindowClient with composition pattern
type rpcClientAdapter struct {
	channelId  uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// connect connects the transport and builds the adapter
func connect(
	channelId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (rpcClientAdapter, error) {
	if err := transport.Connect(config); err != nil {
		return rpcClientAdapter{}, err
	}
	return rpcClientAdapter{
		channelId:  channelId,
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// invoke sends a request on the adapter's channel
func (a *rpcClientAdapter) invoke(req *common.Message) (*common.Message, error) {
	return invokeRPCRequest(a.channelId, req, a.transport, a.serializer)
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a channel ID, a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
func invokeRPCRequest(channelId uint64, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	// Send the request
	respBytes, err := transport.Send(channelId, reqBytes)
	if err != nil {
		return nil, err
	}

	// Deserialize the response
	resp := &common.Message{}
	err = serializer.Deserialize(respBytes, resp)
	if err != nil {
		return nil, fmt.Errorf("RPC client - Error: %s", err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, fmt.Errorf("RPC client - Error: %s", resp.Err)
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("RPC client - Unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	// Return the response
	return resp, nil
}
