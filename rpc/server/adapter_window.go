package server

import (
	"fmt"
	"github.com/caplayground/caplay/rpc/common"
)

// NewWindowServerAdapter creates the adapter of the window channel
func NewWindowServerAdapter(window WindowController) IRPCServerAdapter {
	return &windowServerAdapterImpl{window: window}
}

type windowServerAdapterImpl struct {
	window WindowController
}

func (adapter *windowServerAdapterImpl) Handle(req *common.Message) *common.Message {
	// Check for nil window
	if adapter.window == nil {
		return common.NewErrorResponse("handler: window is nil")
	}

	Logger.Debugf("window command %s from %s", req.MsgType, string(req.Meta))

	switch req.MsgType {
	case common.MsgTWinClose:
		return common.NewWindowResponse(req.MsgType, adapter.window.Close())
	case common.MsgTWinMinimize:
		return common.NewWindowResponse(req.MsgType, adapter.window.Minimize())
	case common.MsgTWinMaximize:
		return common.NewWindowResponse(req.MsgType, adapter.window.Maximize())
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC WindowAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
