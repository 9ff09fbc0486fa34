package client

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/caplayground/caplay/lib/store"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/serializer"
	"github.com/caplayground/caplay/rpc/transport"
)

// NewRPCStore creates a new RPC store, the store of a running shell
// The function takes a channel ID, a config, a transport and a serializer as parameters
// It returns a store.IStore and an error
func NewRPCStore(
	channelId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {
	adapter, err := connect(channelId, config, transport, serializer)
	if err != nil {
		return nil, err
	}
	return &rpcStore{adapter}, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

// GetSync is a network round trip here, a failed request is reported as a miss
func (i *rpcStore) GetSync(key string) (json.RawMessage, bool) {
	resp, err := i.invoke(common.NewGetSyncRequest(key))
	if err != nil {
		Logger.Warningf("remote getSync of %q failed: %v", key, err)
		return nil, false
	}
	return resp.Value, resp.Ok
}

func (i *rpcStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	resp, err := i.invoke(common.NewGetRequest(key))
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return store.NewError(store.RetCInvalidValue, "value is not JSON serializable", err)
	}
	_, err = i.invoke(common.NewSetRequest(key, data))
	return err
}

func (i *rpcStore) GetInfo() (store.Info, error) {
	resp, err := i.invoke(common.NewInfoRequest())
	if err != nil {
		return store.Info{}, err
	}
	var info store.Info
	if err := json.Unmarshal(resp.Value, &info); err != nil {
		return store.Info{}, fmt.Errorf("decode info: %w", err)
	}
	return info, nil
}

// Close closes the transport, the remote store stays open
func (i *rpcStore) Close() error {
	return i.transport.Close()
}
