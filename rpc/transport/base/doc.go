// Package base provides the transport between ranks independent of the
// network protocol (TCP, Unix sockets). Protocol specific packages only
// supply connectors.
//
// Frames:
//
//	8 bytes rank | 8 bytes request id | 4 bytes length | payload
//
// All integers are big endian. The server echoes rank and request id in the
// response, the client matches responses to waiting requests by request id,
// so any number of requests can be in flight on one connection.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: protocol specific dialing, listening
//     and socket options.
//
//   - clientTransport: keeps ConnectionsPerEndpoint connections to every rank
//     and picks one round robin per request. Failed requests are retried with
//     exponential backoff; a connection whose read fails fails its pending
//     requests and reconnects.
//
//   - serverTransport: accepts connections and runs the handler for up to
//     WorkersPerConn requests of a connection concurrently. Read buffers are
//     pooled with sync.Pool.
//
// Thread Safety:
//
//	All public methods are safe for concurrent use.
package base
