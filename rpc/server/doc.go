// Package server implements the bridge server run by the desktop shell.
// The embedded UI (and other local contexts) send it window commands and store requests.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes the requests of one channel.
//
//   - NewWindowServerAdapter: adapter of the window channel, translating the
//     closeWindow, minimizeWindow and maximizeWindow commands to WindowController calls.
//
//   - NewIStoreServerAdapter: adapter of the store channel, translating requests to
//     store.IStore method calls on the shell's store.
//
//   - NewRPCServer: creates a server with the configured channels, transport and serializer.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Channels: []common.ServerChannel{
//	    {ChannelID: common.ChannelWindow, Type: common.ChannelTypeWindow},
//	    {ChannelID: common.ChannelStore, Type: common.ChannelTypeStore},
//	  },
//	  Endpoint: "unix:/run/user/1000/caplay.sock",
//	  LogLevel: "info",
//	}
//
//	s, err := server.NewRPCServer(config, http.NewHttpServerTransport(), serializer.NewJSONSerializer(),
//	  server.Targets{Window: window, Store: st})
//	if err != nil {
//	  return err
//	}
//	go s.Serve()
//	defer s.Shutdown(context.Background())
//
// Requests for unknown channels and messages of the wrong type are answered with an
// error message; the transport never fails because of the content of a request.
package server
