package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"github.com/ValentinKolb/dKG/rpc/common"
	"github.com/vmihailenco/msgpack/v5"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &codecSerializer{
		marshal: func(msg *common.Message) ([]byte, error) {
			return json.Marshal(msg)
		},
		unmarshal: json.Unmarshal,
	}
}

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// Every message carries its own type description, use it for debugging only.
func NewGOBSerializer() IRPCSerializer {
	return &codecSerializer{
		marshal: func(msg *common.Message) ([]byte, error) {
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
		unmarshal: func(b []byte, v any) error {
			return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
		},
	}
}

// NewMsgpackSerializer creates a new serializer using MessagePack encoding
func NewMsgpackSerializer() IRPCSerializer {
	return &codecSerializer{
		marshal: func(msg *common.Message) ([]byte, error) {
			return msgpack.Marshal(msg)
		},
		unmarshal: msgpack.Unmarshal,
	}
}

// codecSerializer adapts a reflection based codec to IRPCSerializer
type codecSerializer struct {
	marshal   func(msg *common.Message) ([]byte, error)
	unmarshal func(b []byte, v any) error
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (c *codecSerializer) Serialize(msg common.Message) ([]byte, error) {
	return c.marshal(&msg)
}

func (c *codecSerializer) Deserialize(b []byte, msg *common.Message) error {
	// the codecs merge into existing values and skip omitted fields
	*msg = common.Message{}
	return c.unmarshal(b, msg)
}
