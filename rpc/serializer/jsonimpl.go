package serializer

import (
	"bytes"
	"encoding/json"
	"github.com/caplayground/caplay/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding.
// Message types are encoded by name (e.g. "closeWindow").
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// ---- Interface Methods (docu see serializer.IRPCSerializer) ----

// Serialize leaves '<', '>' and '&' in keys and error texts unescaped
func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	return json.Unmarshal(b, msg)
}
