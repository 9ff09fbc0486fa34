package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key   string `json:"key,omitempty"`   // Used for: Get, GetSync, Set
	Value []byte `json:"value,omitempty"` // Used for: Set (request), Get/GetSync (response)

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // Used for: Get, GetSync responses
	Err string `json:"err,omitempty"` // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Custom messages (context id of the sender)
}

// --------------------------------------------------------------------------
// Message Factory Functions - window commands
// --------------------------------------------------------------------------

// NewWindowRequest creates a window command request.
// Window commands carry no parameters; meta identifies the sending context.
func NewWindowRequest(cmd MessageType, meta []byte) *Message {
	return &Message{
		MsgType: cmd,
		Meta:    meta,
	}
}

// NewWindowResponse creates a window command response
func NewWindowResponse(cmd MessageType, err error) *Message {
	msg := &Message{
		MsgType: cmd,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// --------------------------------------------------------------------------
// Message Factory Functions - store
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request, value is the JSON encoded value
func NewSetRequest(key string, value []byte) *Message {
	return &Message{
		MsgType: MsgTKVSet,
		Key:     key,
		Value:   value,
	}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVSet,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVGet,
		Ok:      ok,
		Value:   value,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetSyncRequest creates a new GetSync request
func NewGetSyncRequest(key string) *Message {
	return &Message{
		MsgType: MsgTKVGetSync,
		Key:     key,
	}
}

// NewGetSyncResponse creates a new GetSync response
func NewGetSyncResponse(value []byte, ok bool) *Message {
	return &Message{
		MsgType: MsgTKVGetSync,
		Ok:      ok,
		Value:   value,
	}
}

// NewInfoRequest creates a new Info request
func NewInfoRequest() *Message {
	return &Message{
		MsgType: MsgTKVInfo,
	}
}

// NewInfoResponse creates a new Info response, info is JSON encoded
func NewInfoResponse(info []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVInfo,
		Value:   info,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
// Window commands use the names the web UI calls them by.
func (t MessageType) String() string {
	switch t {
	case MsgTWinClose:
		return "closeWindow"
	case MsgTWinMinimize:
		return "minimizeWindow"
	case MsgTWinMaximize:
		return "maximizeWindow"
	case MsgTKVSet:
		return "set"
	case MsgTKVGet:
		return "get"
	case MsgTKVGetSync:
		return "getSync"
	case MsgTKVInfo:
		return "info"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// ParseMessageType converts the string representation back to a MessageType
func ParseMessageType(s string) (MessageType, error) {
	for t := MsgTSuccess; t <= MsgTKVInfo; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return MsgTUnknown, fmt.Errorf("unknown message type: %s", s)
}

// IsWindowCommand reports whether the type is one of the window commands
func (t MessageType) IsWindowCommand() bool {
	return t == MsgTWinClose || t == MsgTWinMinimize || t == MsgTWinMaximize
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseMessageType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Window commands (desktop bridge)

	MsgTWinClose    // Close the host window
	MsgTWinMinimize // Minimize the host window
	MsgTWinMaximize // Maximize (or restore) the host window

	// Store operations

	MsgTKVSet     // Set a key-value pair
	MsgTKVGet     // Authoritative get of a value by key
	MsgTKVGetSync // Cached get of a value by key
	MsgTKVInfo    // Store statistics
)
