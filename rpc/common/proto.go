package common

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/dKG/lib/comm"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Requests carry the vertex query in Payload, responses the answer.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type" msgpack:"msg_type"`

	// Worker that issued the request, echoed in the response
	Worker uint64 `json:"worker,omitempty" msgpack:"worker,omitempty"`

	// Query arguments (request) or the answer (response)
	Payload []uint64 `json:"payload,omitempty" msgpack:"payload,omitempty"`

	// Empty if no error, otherwise contains the error message
	Err string `json:"err,omitempty" msgpack:"err,omitempty"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewQueryRequest creates the request for a vertex query of the given kind
func NewQueryRequest(worker comm.WorkerID, kind comm.MessageKind, payload []uint64) *Message {
	return &Message{
		MsgType: MessageTypeOf(kind),
		Worker:  uint64(worker),
		Payload: payload,
	}
}

// NewQueryResponse creates the response to req
func NewQueryResponse(req *Message, payload []uint64, err error) *Message {
	msg := &Message{
		MsgType: req.MsgType,
		Worker:  req.Worker,
		Payload: payload,
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

// MessageTypeOf maps a query kind to its message type
func MessageTypeOf(kind comm.MessageKind) MessageType {
	switch kind {
	case comm.KindVertexEdges:
		return MsgTVertexEdges
	case comm.KindVertexPathsSize:
		return MsgTVertexPathsSize
	case comm.KindVertexPath:
		return MsgTVertexPath
	default:
		return MsgTUnknown
	}
}

// Kind returns the query kind of a message type, false for control messages
func (t MessageType) Kind() (comm.MessageKind, bool) {
	switch t {
	case MsgTVertexEdges:
		return comm.KindVertexEdges, true
	case MsgTVertexPathsSize:
		return comm.KindVertexPathsSize, true
	case MsgTVertexPath:
		return comm.KindVertexPath, true
	default:
		return 0, false
	}
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTVertexEdges:
		return "vertexEdges"
	case MsgTVertexPathsSize:
		return "vertexPathsSize"
	case MsgTVertexPath:
		return "vertexPath"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
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

	switch s {
	case "vertexEdges":
		*t = MsgTVertexEdges
	case "vertexPathsSize":
		*t = MsgTVertexPathsSize
	case "vertexPath":
		*t = MsgTVertexPath
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	case "unknown":
		*t = MsgTUnknown
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

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

	// Vertex queries

	MsgTVertexEdges     // Coverage and edges of a vertex
	MsgTVertexPathsSize // Number of directions recorded at a vertex
	MsgTVertexPath      // One direction of a vertex
)
