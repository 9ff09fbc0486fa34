// Package rpc is the bridge between the desktop shell and the contexts it hosts.
// The shell runs one server; contexts and the CLI reach its window controls and
// its store through clients.
//
// The package is organized into several subpackages:
//
//   - common: The Message protocol, channel and client/server configuration, and
//     the logger factory shared by the whole program.
//
//   - transport: Network communication abstraction with an HTTP implementation
//     that listens on tcp addresses or unix sockets.
//
//   - serializer: Message serialization (JSON, GOB).
//
//   - client: The window command client backing the bridge of a context, and an
//     IStore that forwards to the shell's store.
//
//   - server: The server routing each channel id to the window or store adapter.
package rpc
