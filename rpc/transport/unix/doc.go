// Package unix implements the transport between ranks over Unix domain
// sockets, for ranks running on the same machine. Framing, connection pooling
// and response correlation come from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners, replacing a stale socket file
//
// The default buffer size is 64 KB.
package unix
