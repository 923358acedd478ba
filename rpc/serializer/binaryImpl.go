package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dKG/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasWorker  byte = 1 << 0
	hasPayload byte = 1 << 1
	hasErr     byte = 1 << 2
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	result := make([]byte, b.sizeBytes(msg))

	// Write message type
	result[0] = byte(msg.MsgType)

	var flags byte = 0

	// Start after MsgType and flags
	pos := 2

	// Handle Worker
	if msg.Worker != 0 {
		flags |= hasWorker
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Worker)
		pos += 8
	}

	// Handle Payload
	if msg.Payload != nil {
		flags |= hasPayload
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Payload)))
		pos += 4

		for _, word := range msg.Payload {
			binary.BigEndian.PutUint64(result[pos:pos+8], word)
			pos += 8
		}
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errLen := len(msg.Err)
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		copy(result[pos:pos+errLen], msg.Err)
		pos += errLen
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	pos := 2

	// Read Worker if present
	if flags&hasWorker != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for worker")
		}
		msg.Worker = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.Worker = 0
	}

	// Read Payload if present
	if flags&hasPayload != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for payload length")
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if n > (len(data)-pos)/8 {
			return fmt.Errorf("data too short for payload of %d words", n)
		}

		// Reuse the existing slice if it is large enough
		if msg.Payload == nil || cap(msg.Payload) < n {
			msg.Payload = make([]uint64, n)
		} else {
			msg.Payload = msg.Payload[:n]
		}
		for i := 0; i < n; i++ {
			msg.Payload[i] = binary.BigEndian.Uint64(data[pos : pos+8])
			pos += 8
		}
	} else {
		msg.Payload = nil
	}

	// Read Err if present
	if flags&hasErr != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for error length")
		}
		errLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if pos+errLen > len(data) {
			return fmt.Errorf("data too short for error data")
		}
		msg.Err = string(data[pos : pos+errLen])
	} else {
		msg.Err = ""
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.Worker != 0 {
		size += 8
	}
	if msg.Payload != nil {
		size += 4 + 8*len(msg.Payload) // 4 bytes for the word count + the words
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) // 4 bytes for length + error string
	}

	return size
}
