package server

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/caplayground/caplay/lib/store"
	"github.com/caplayground/caplay/rpc/common"
	"time"
)

// NewIStoreServerAdapter creates the adapter of the store channel.
// Authoritative reads wait at most timeout for the persistence engine.
func NewIStoreServerAdapter(st store.IStore, timeout time.Duration) IRPCServerAdapter {
	return &iStoreServerAdapterImpl{store: st, timeout: timeout}
}

type iStoreServerAdapterImpl struct {
	store   store.IStore
	timeout time.Duration
}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message) *common.Message {
	// Check for nil store
	if adapter.store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTKVSet:
		// the value is already JSON, the store validates it
		err := adapter.store.Set(req.Key, json.RawMessage(req.Value))
		return common.NewSetResponse(err)
	case common.MsgTKVGet:
		ctx, cancel := context.WithTimeout(context.Background(), adapter.timeout)
		defer cancel()
		val, ok, err := adapter.store.Get(ctx, req.Key)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTKVGetSync:
		val, ok := adapter.store.GetSync(req.Key)
		return common.NewGetSyncResponse(val, ok)
	case common.MsgTKVInfo:
		info, err := adapter.store.GetInfo()
		if err != nil {
			return common.NewInfoResponse(nil, err)
		}
		data, err := json.Marshal(info)
		return common.NewInfoResponse(data, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
