package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/dKG/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":    NewJSONSerializer,
	"GOB":     NewGOBSerializer,
	"Binary":  NewBinarySerializer,
	"Msgpack": NewMsgpackSerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Edge query
		{
			MsgType: common.MsgTVertexEdges,
			Worker:  42,
			Payload: []uint64{0x1b2c3d},
		},

		// Edge response with full 64 bit words
		{
			MsgType: common.MsgTVertexEdges,
			Worker:  1 << 40,
			Payload: []uint64{1, 17, 0xffffffffffffffff},
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		// Message with all fields filled
		{
			MsgType: common.MsgTVertexPath,
			Worker:  3,
			Payload: []uint64{12345, 2},
			Err:     "no such path",
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestDeserializeOverwritesReusedMessage decodes every test message into the
// same Message, no field of an earlier message may survive
func TestDeserializeOverwritesReusedMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()
			var reused common.Message

			for i, msg := range append(testMessages(), testMessages()[0]) {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Fatalf("Failed to serialize message %d: %v", i, err)
				}
				if err := serializer.Deserialize(data, &reused); err != nil {
					t.Fatalf("Failed to deserialize message %d: %v", i, err)
				}
				if !reflect.DeepEqual(msg, reused) {
					t.Errorf("Message %d decoded into a reused message:\nOriginal: %+v\nResult: %+v", i, msg, reused)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTSuccess; msgType <= common.MsgTVertexPath; msgType++ {
				msg := common.Message{MsgType: msgType}

				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				var result common.Message
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestBinarySerializerSpecific tests specific edge cases for the binary serializer
func TestBinarySerializerSpecific(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Empty payload slice but not nil",
			msg: common.Message{
				MsgType: common.MsgTVertexPathsSize,
				Payload: []uint64{},
			},
		},
		{
			name: "Worker without payload",
			msg: common.Message{
				MsgType: common.MsgTVertexEdges,
				Worker:  9,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var result common.Message
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if !reflect.DeepEqual(tc.msg, result) {
				t.Errorf("mismatch: expected %+v, got %+v", tc.msg, result)
			}
		})
	}
}

// TestBinaryReusesPayload checks that decoding into a message reuses its payload
func TestBinaryReusesPayload(t *testing.T) {
	serializer := NewBinarySerializer()
	data, err := serializer.Serialize(common.Message{MsgType: common.MsgTVertexEdges, Payload: []uint64{1, 2}})
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]uint64, 0, 8)
	msg := common.Message{Payload: buf, Err: "stale"}
	if err := serializer.Deserialize(data, &msg); err != nil {
		t.Fatal(err)
	}
	if &msg.Payload[0] != &buf[:1][0] {
		t.Error("expected the payload to be decoded into the existing slice")
	}
	if msg.Err != "" {
		t.Error("absent fields must be reset")
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Truncated worker",
			data:        []byte{3, 1, 0, 0, 0},
			expectError: true,
		},
		{
			name:        "Invalid length for payload",
			data:        []byte{3, 2, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 1}, // Claims 2 words but only 1 provided
			expectError: true,
		},
		{
			name:        "Huge payload length",
			data:        []byte{3, 2, 0xff, 0xff, 0xff, 0xff},
			expectError: true,
		},
		{
			name:        "Invalid length for error",
			data:        []byte{2, 4, 0, 0, 0, 10, 'x'},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
