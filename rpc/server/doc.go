// Package server implements the RPC server of a rank.
//
// Requests of other ranks arrive on transport goroutines. These only decode
// the request and push it into the inbox of the rank, a lock-free queue. The
// rank loop, which also steps the cleanup workers of the rank, calls Drain
// between rounds and answers the queued requests against its store. The
// store is only ever touched by that single goroutine.
//
// Key Components:
//
//   - RankServer: binds a transport, a serializer and a comm.Handler (usually
//     a fetch.Responder over the rank's grid table).
//
//   - Drain: answers queued requests without blocking.
//
// Usage Example:
//
//	s := server.NewRankServer(config, unix.NewUnixDefaultServerTransport(),
//		serializer.NewBinarySerializer(), fetch.NewResponder(table))
//	go s.Serve()
//	defer s.Close()
//
//	for !remover.IsDone() {
//		remover.Work()
//		s.Drain(0)
//	}
//
// A request that is not drained within TimeoutSecond is answered with an error.
package server
