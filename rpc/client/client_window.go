package client

import (
	"fmt"
	"github.com/caplayground/caplay/lib/bridge"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/serializer"
	"github.com/caplayground/caplay/rpc/transport"
)

// WindowClient sends window commands to the shell.
// It implements bridge.Sender.
type WindowClient struct {
	rpcClientAdapter
	// meta is sent with every command and identifies the sending context
	meta []byte
}

var _ bridge.Sender = (*WindowClient)(nil)

// NewWindowClient creates a new window client
// The function takes a channel ID, a config, a transport, a serializer and the id of the
// sending context as parameters
func NewWindowClient(
	channelId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
	contextId string,
) (*WindowClient, error) {
	adapter, err := connect(channelId, config, transport, serializer)
	if err != nil {
		return nil, err
	}
	return &WindowClient{rpcClientAdapter: adapter, meta: []byte(contextId)}, nil
}

// Send sends one command and waits for the shell to accept it
func (c *WindowClient) Send(cmd bridge.Command) error {
	msgType, err := common.ParseMessageType(string(cmd))
	if err != nil || !msgType.IsWindowCommand() {
		return fmt.Errorf("not a window command: %s", cmd)
	}
	_, err = c.invoke(common.NewWindowRequest(msgType, c.meta))
	return err
}

func (c *WindowClient) CloseWindow() error    { return c.Send(bridge.CmdCloseWindow) }
func (c *WindowClient) MinimizeWindow() error { return c.Send(bridge.CmdMinimizeWindow) }
func (c *WindowClient) MaximizeWindow() error { return c.Send(bridge.CmdMaximizeWindow) }

// Close closes the transport
func (c *WindowClient) Close() error {
	return c.transport.Close()
}
