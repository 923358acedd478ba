package serializer

import "github.com/ValentinKolb/dKG/rpc/common"

// IRPCSerializer is the interface for all Message Serializers
type IRPCSerializer interface {
	// Serialize encodes a Message. The result must not share memory with
	// msg.Payload.
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes b into msg, overwriting every field, so one Message
	// can be reused for many calls. The payload slice of msg may be reused.
	Deserialize(b []byte, msg *common.Message) error
}
