// Package store defines the key-value store application state is kept in, and the
// error type its implementations return.
//
// Key Components:
//
//   - IStore Interface: type-erased access to JSON values by key. GetSync answers from a
//     cache without I/O and may miss, Get waits for the primary backend, Set writes
//     synchronously to native storage and asynchronously to the persistence engine.
//
//   - Error System: errors a caller may act on carry a RetCode (invalid value, native
//     storage failure, closed store). Persistence engine write failures never reach
//     the caller; they are logged and show up in Info.
//
// Implementations:
//
//   - Dual Store (dualstore): persistence engine + native storage in one process.
//     Available in the "github.com/caplayground/caplay/lib/store/dualstore" package.
//
//   - RPC Store (rpc/client.NewRPCStore): the store of a running desktop shell,
//     reached over the bridge. Available in the "github.com/caplayground/caplay/rpc/client" package.
package store
