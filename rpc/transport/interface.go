package transport

import (
	"github.com/ValentinKolb/dKG/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes the destination rank and a request as parameters and returns a response
type ServerHandleFunc func(rank uint64, req []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler is called for every received request
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and blocks while serving requests.
	// Returns nil once Close was called.
	Listen(config common.ServerConfig) error
	// Close stops listening and closes all open connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect opens the connections to all ranks of the configuration
	Connect(config common.ClientConfig) error
	// Send sends a request to the given rank and returns the response
	Send(rank uint64, req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
