// Package transport defines how serialized requests travel between ranks.
// Every implementation routes by destination rank: a client holds
// connections to all ranks, indexed like ClientConfig.Endpoints, and a server
// hands each request together with the rank it was addressed to to the
// registered ServerHandleFunc.
//
// Implementations live in the subpackages tcp, unix (both framed by base)
// and http. Server transports must return from Listen once Close is called,
// so a rank can shut down without leaking its listener.
package transport
