// Package common provides the data structures shared by the bridge server
// run by the desktop shell and the clients embedded in the web UI contexts.
//
// The package focuses on:
//   - Message protocol definition for window commands and remote store access
//   - Configuration structures for the bridge server and its clients
//   - Custom logging implementation plugged into dragonboat's logger registry
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication, with a flexible
//     structure that adapts to different operation types. Includes factory methods
//     for window commands and store requests and responses.
//
//   - MessageType: Enumeration of all supported operations. Window commands
//     (closeWindow, minimizeWindow, maximizeWindow) carry no parameters and no
//     response payload.
//
//   - ServerConfig / ClientConfig: Configuration for the bridge server (endpoint,
//     channels) and its clients (endpoints, timeout, retries).
//
//   - Logger: Custom logging implementation that installs itself as the logger
//     factory of github.com/lni/dragonboat/v4/logger, so every package can obtain
//     a named logger via logger.GetLogger("name").
package common
