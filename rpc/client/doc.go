// Package client implements the RPC clients of the bridge server run by the desktop shell.
//
// Key Components:
//
//   - NewWindowClient: sends the window commands (closeWindow, minimizeWindow,
//     maximizeWindow) and implements bridge.Sender, so it can back a bridge.Bridge.
//
//   - NewRPCStore: implements store.IStore on the store of a running shell. GetSync is a
//     round trip here and reports transport failures as a miss.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"unix:/run/user/1000/caplay.sock"},
//	  TimeoutSecond: 5,
//	  RetryCount:    1,
//	}
//
//	st, err := client.NewRPCStore(common.ChannelStore, config,
//	  http.NewHttpClientTransport(), serializer.NewJSONSerializer())
//	if err != nil {
//	  return err
//	}
//	defer st.Close()
//
//	raw, ok, err := st.Get(ctx, "editor/theme")
//
// Every client owns its transport: closing the client closes the transport.
package client
