// Package tcp implements the TCP socket transport between ranks. It provides
// the TCP connectors for the base package, which holds the framing, connection
// pooling and response correlation.
//
// Key Components:
//
//   - clientConnector: dials ranks and applies TCP_NODELAY
//
//   - serverConnector: listens and applies the socket options of the server
//     configuration to accepted connections
//
// The default server buffer size is 512 KB.
package tcp
