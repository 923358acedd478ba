// Package rpc is the communication layer between the ranks of dKG. It carries
// the vertex requests of the cleanup workers to the rank owning the vertex
// and the answers back.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (Binary, JSON,
//     GOB, Msgpack) for converting between Message objects and byte arrays.
//
//   - client: The network Correlator, the client side of a rank. Workers submit
//     requests without blocking and collect the responses later.
//
//   - server: The RankServer, which queues incoming requests until the rank loop
//     answers them from the local vertex store.
package rpc
