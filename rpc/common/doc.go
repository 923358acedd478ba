// Package common provides the data structures shared by the RPC layer of dKG.
//
// Key Components:
//
//   - Message: the single structure used for requests and responses between
//     ranks. A request names the querying worker and carries the vertex query,
//     the response echoes the worker and carries the answer.
//
//   - MessageType: enumeration of the vertex queries plus control messages.
//     Maps one to one onto comm.MessageKind.
//
//   - ServerConfig, ClientConfig, GraphConfig: configuration of a rank, its
//     connections to the other ranks and its vertex store.
//
//   - Logger: custom formatting for dragonboat's logger registry, which all
//     packages of dKG log through.
package common
