// Package client implements the network side of comm.Correlator.
//
// Workers of a rank never block: Submit returns immediately and a goroutine
// performs the round trip through the transport (with the transport's retries
// and timeouts). The response is parked in a concurrent map keyed by worker
// id until the worker polls IsComplete and takes it with TakeResponse.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:              []string{"node0:7000", "node1:7000"}, // indexed by rank
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	}
//	corr, _ := client.NewCorrelator(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	defer corr.Close()
//
//	corr.Submit(worker, 1, comm.KindVertexEdges, []uint64{key})
//	for !corr.IsComplete(worker) {
//	  // step other workers
//	}
//	resp := corr.TakeResponse(worker)
//
// Thread Safety:
//
//	Submit, IsComplete and TakeResponse may be called from any goroutine.
package client
