package serializer

import (
	"fmt"
	"github.com/caplayground/caplay/rpc/common"
)

// IRPCSerializer is the interface for all Message Serializers
type IRPCSerializer interface {
	// Serialize serializes a Message into a byte array
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize deserializes a byte array into the given Message
	Deserialize(b []byte, msg *common.Message) error
}

// ByName returns the serializer registered under the given name (json, gob)
func ByName(name string) (IRPCSerializer, error) {
	switch name {
	case "json":
		return NewJSONSerializer(), nil
	case "gob":
		return NewGOBSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s (expected json or gob)", name)
	}
}
