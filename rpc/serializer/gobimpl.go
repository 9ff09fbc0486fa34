package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"github.com/caplayground/caplay/rpc/common"
	"sync"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// Message types are encoded by number, both ends must run the same build.
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRPCSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// bufPool reuses encode buffers, a gob stream is self-describing per message
var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// ---- Interface Methods (docu see serializer.IRPCSerializer) ----

func (g gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := gob.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(msg); err != nil {
		return err
	}
	// json rejects unknown type names on its own, gob only sees a number
	if msg.MsgType > common.MsgTKVInfo {
		return fmt.Errorf("unknown message type: %d", msg.MsgType)
	}
	return nil
}
