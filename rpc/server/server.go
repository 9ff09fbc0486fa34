package server

import (
	"context"
	"fmt"
	"github.com/caplayground/caplay/lib/store"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/serializer"
	"github.com/caplayground/caplay/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("rpc")

// Targets are the objects of the shell the channels operate on
type Targets struct {
	Window WindowController
	Store  store.IStore
	// ReadTimeout bounds authoritative store reads (default 10s)
	ReadTimeout time.Duration
}

// NewRPCServer creates the bridge server of the desktop shell
// It takes a config, transport, serializer and the targets of its channels as parameters
//
// Usage:
//
//	s, err := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//		server.Targets{Window: window, Store: st},
//	)
//	if err != nil {
//		return err
//	}
//
//	if err := s.Serve(); err != nil {
//		return err
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	targets Targets,
) (*RPCServer, error) {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	if targets.ReadTimeout <= 0 {
		targets.ReadTimeout = 10 * time.Second
	}

	s := &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		channels:   xsync.NewMapOf[uint64, IRPCServerAdapter](),
	}

	/*
		Note: the server can have any number of channels, each bound to one adapter.
		The well known setup is window=1 and store=2, but the ids are configurable.
	*/

	for _, ch := range config.Channels {
		var adapter IRPCServerAdapter
		switch ch.Type {
		case common.ChannelTypeWindow:
			adapter = NewWindowServerAdapter(targets.Window)
		case common.ChannelTypeStore:
			adapter = NewIStoreServerAdapter(targets.Store, targets.ReadTimeout)
		default:
			return nil, fmt.Errorf("invalid channel type: %s", ch.Type)
		}
		if _, loaded := s.channels.LoadOrStore(ch.ChannelID, adapter); loaded {
			return nil, fmt.Errorf("duplicate channel id %d", ch.ChannelID)
		}
		Logger.Infof("created %s channel %d", ch.Type, ch.ChannelID)
	}

	s.registerTransportHandler()

	Logger.Infof("Created RPC Server")
	Logger.Debugf(config.String())

	return s, nil
}

// RPCServer routes requests of the transport to the adapters of their channel
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	channels   *xsync.MapOf[uint64, IRPCServerAdapter]
}

func (s *RPCServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(channelId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Get appropriate channel
		adapter, ok := s.channels.Load(channelId)

		// Case channel does not exist -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("channel %d not found", channelId),
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
				}
			} else {
				// Let the adapter handle the request
				respMsg = *adapter.Handle(&msg)
			}
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			val, _ = s.serializer.Serialize(common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			})
		}
		return val
	})
}

// Serve opens the configured endpoint and serves until Shutdown is called
func (s *RPCServer) Serve() error {
	return s.transport.Listen(s.config)
}

// ServeListener serves on an already open listener until Shutdown is called
func (s *RPCServer) ServeListener(l net.Listener) error {
	return s.transport.Serve(l)
}

// Shutdown stops the transport
func (s *RPCServer) Shutdown(ctx context.Context) error {
	return s.transport.Shutdown(ctx)
}
