// Package serializer converts RPC messages between ranks to bytes and back.
// It defines a common interface and multiple implementations.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format. A type byte and a flag byte
//     are followed by the present fields only; the payload is a word count and
//     big endian 64 bit words. Smallest and fastest, the default.
//
//   - codecSerializer: Adapter for the reflection based codecs, created by
//     NewMsgpackSerializer (compact and self describing), NewJSONSerializer
//     (message types written as names, useful for debugging) and
//     NewGOBSerializer (largest and slowest).
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	serializer := serializer.NewBinarySerializer()
//	data, err := serializer.Serialize(message)
//	// ... send data ...
//	var receivedMsg common.Message
//	err = serializer.Deserialize(receivedData, &receivedMsg)
package serializer
