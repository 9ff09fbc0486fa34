package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the key-value store the application state lives in.
// Values are type-erased: Set accepts any JSON-serializable value and reads return
// the JSON encoding. Callers agree on the shape per key by convention.
type IStore interface {
	// GetSync returns the value cached by the persistence engine without waiting on I/O.
	// A miss (loaded=false) is normal before the engine finished warming up; callers
	// fall back to another source.
	GetSync(key string) (value json.RawMessage, loaded bool)
	// Get returns the value once the persistence engine answered authoritatively.
	// The answer reflects every Set made through this store before the call.
	Get(ctx context.Context, key string) (value json.RawMessage, loaded bool, err error)
	// Set writes the value to native storage synchronously and hands it to the
	// persistence engine without waiting for the durable write.
	// Persistence engine failures are logged and never returned.
	Set(key string, value any) (err error)
	// GetInfo returns statistics about the store and its backends.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetInfo() (info Info, err error)
	// Close flushes pending engine writes and releases the backends.
	Close() (err error)
}

// Info describes the state of a store
type Info struct {
	Engine        string  `json:"engine"`
	CachedKeys    int     `json:"cached_keys"`
	NativeKeys    int     `json:"native_keys"`
	PendingWrites int     `json:"pending_writes"`
	Writes        uint64  `json:"writes"`
	WriteErrors   uint64  `json:"write_errors"`
	WriteMeanMs   float64 `json:"write_mean_ms"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Command executed successfully.
	RetCInternalError                // 1: Command failed due to an internal error.
	RetCInvalidValue                 // 2: The value is not JSON-serializable.
	RetCNativeStorage                // 3: The native storage write failed.
	RetCClosed                       // 4: The store is closed.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidValue:
		return "InvalidValue"
	case RetCNativeStorage:
		return "NativeStorage"
	case RetCClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}
