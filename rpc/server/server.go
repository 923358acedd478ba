package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/util"
	"github.com/ValentinKolb/dKG/rpc/common"
	"github.com/ValentinKolb/dKG/rpc/serializer"
	"github.com/ValentinKolb/dKG/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

var (
	requestsAnswered = metrics.NewCounter("dkg_rpc_requests_answered_total")
	requestsFailed   = metrics.NewCounter("dkg_rpc_requests_failed_total")
)

// job is a request waiting in the inbox for the rank loop
type job struct {
	req   common.Message
	reply chan *common.Message
}

// RankServer receives the vertex queries of other ranks. Transport
// goroutines only decode requests and queue them; the answers are computed by
// Drain on the goroutine that owns the rank's store, so the store is never
// accessed concurrently.
type RankServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	handler    comm.Handler
	inbox      *util.Queue[*job]
}

// NewRankServer creates a new RPC server for one rank
//
// Usage:
//
//	s := server.NewRankServer(
//		config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewBinarySerializer(),
//		fetch.NewResponder(table),
//	)
//	go s.Serve()
//	for working {
//		// ... step the workers of the rank ...
//		s.Drain(0)
//	}
func NewRankServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	handler comm.Handler,
) *RankServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	s := &RankServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		handler:    handler,
		inbox:      util.NewQueue[*job](),
	}
	s.registerTransportHandler()
	return s
}

func (s *RankServer) registerTransportHandler() {
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	s.transport.RegisterHandler(func(rank uint64, req []byte) []byte {
		respMsg := s.enqueue(rank, req, timeout)

		val, err := s.serializer.Serialize(*respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
		}
		return val
	})
}

// enqueue decodes a request, hands it to the rank loop and waits for the answer
func (s *RankServer) enqueue(rank uint64, req []byte, timeout time.Duration) *common.Message {
	if rank != uint64(s.config.Rank) {
		requestsFailed.Inc()
		return common.NewErrorResponse(fmt.Sprintf("request for rank %d received by rank %d", rank, s.config.Rank))
	}

	var msg common.Message
	if err := s.serializer.Deserialize(req, &msg); err != nil {
		requestsFailed.Inc()
		return common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	}

	j := &job{req: msg, reply: make(chan *common.Message, 1)}
	if !s.inbox.Push(j) {
		return common.NewErrorResponse("server is shutting down")
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case resp := <-j.reply:
		return resp
	case <-timeoutCh:
		requestsFailed.Inc()
		return common.NewErrorResponse(fmt.Sprintf("rank %d did not answer within %s", s.config.Rank, timeout))
	}
}

// Drain answers at most max queued requests (all if max <= 0) on the calling
// goroutine and returns the number of answered requests. Never blocks.
func (s *RankServer) Drain(max int) int {
	return s.inbox.Drain(max, func(j *job) {
		j.reply <- s.answer(&j.req)
	})
}

func (s *RankServer) answer(req *common.Message) *common.Message {
	kind, ok := req.MsgType.Kind()
	if !ok {
		requestsFailed.Inc()
		return common.NewErrorResponse(fmt.Sprintf("unsupported message type: %s", req.MsgType))
	}

	payload, err := s.handler.Answer(kind, req.Payload)
	if err != nil {
		requestsFailed.Inc()
		Logger.Warningf("rank %d failed to answer %s of worker %d: %v", s.config.Rank, kind, req.Worker, err)
	} else {
		requestsAnswered.Inc()
	}
	return common.NewQueryResponse(req, payload, err)
}

// Pending returns the number of queued requests
func (s *RankServer) Pending() int {
	return s.inbox.Len()
}

// Serve listens for requests and blocks until Close is called
func (s *RankServer) Serve() error {
	Logger.Infof("Serving rank %d of %d", s.config.Rank, s.config.Ranks)
	return s.transport.Listen(s.config)
}

// Close stops accepting requests and answers the remaining ones with an error
func (s *RankServer) Close() error {
	s.inbox.Close()
	err := s.transport.Close()
	s.inbox.Drain(0, func(j *job) {
		j.reply <- common.NewErrorResponse("server is shutting down")
	})
	return err
}
