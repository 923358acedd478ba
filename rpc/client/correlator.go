package client

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/rpc/common"
	"github.com/ValentinKolb/dKG/rpc/serializer"
	"github.com/ValentinKolb/dKG/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// Correlator implements comm.Correlator over the network. Submit hands the
// request to a goroutine which sends it and parks the response by worker id
// until the worker takes it. A failed request is sent again, with a growing
// pause, until the owning rank answers or the correlator is closed, so a
// worker never sees a response that was not produced by a handler.
type Correlator struct {
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
	responses  *xsync.MapOf[comm.WorkerID, []uint64]
	inflight   sync.WaitGroup
	pending    atomic.Int64
	done       chan struct{}
	closeOnce  sync.Once
}

const (
	minResubmitDelay = 10 * time.Millisecond
	maxResubmitDelay = time.Second
)

// NewCorrelator connects the transport to all ranks of config
//
// Usage:
//
//	corr, err := client.NewCorrelator(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	fetcher := fetch.NewAttributeFetcher(worker, rank, router, table, corr)
func NewCorrelator(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*Correlator, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &Correlator{
		transport:  transport,
		serializer: serializer,
		responses:  xsync.NewMapOf[comm.WorkerID, []uint64](),
		done:       make(chan struct{}),
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see comm.Correlator)
// --------------------------------------------------------------------------

func (c *Correlator) Submit(worker comm.WorkerID, destination comm.Rank, kind comm.MessageKind, payload []uint64) {
	c.responses.Delete(worker)
	req := common.NewQueryRequest(worker, kind, append([]uint64(nil), payload...))

	c.pending.Add(1)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer c.pending.Add(-1)

		delay := minResubmitDelay
		for {
			resp, err := invokeRPCRequest(uint64(destination), req, c.transport, c.serializer)
			if err == nil {
				payload := resp.Payload
				if payload == nil {
					payload = []uint64{}
				}
				c.responses.Store(worker, payload)
				return
			}
			Logger.Warningf("%s of worker %d to rank %d failed, resubmitting in %s: %v", kind, worker, destination, delay, err)

			select {
			case <-c.done:
				Logger.Errorf("%s of worker %d to rank %d abandoned, correlator closed", kind, worker, destination)
				return
			case <-time.After(delay):
			}
			delay = min(2*delay, maxResubmitDelay)
		}
	}()
}

func (c *Correlator) IsComplete(worker comm.WorkerID) bool {
	_, ok := c.responses.Load(worker)
	return ok
}

func (c *Correlator) TakeResponse(worker comm.WorkerID) []uint64 {
	resp, ok := c.responses.LoadAndDelete(worker)
	if !ok {
		return nil
	}
	return resp
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Pending returns the number of requests without response
func (c *Correlator) Pending() int {
	return int(c.pending.Load())
}

// Close stops resubmitting failed requests, waits for the requests in flight
// and closes the transport
func (c *Correlator) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.inflight.Wait()
	return c.transport.Close()
}
