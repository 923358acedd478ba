package comm

type request struct {
	destination Rank
	kind        MessageKind
	payload     []uint64
}

// Loopback is an in-process Correlator. Submitted requests are answered by
// the handler of their destination rank on the next call to Advance, so a
// worker always observes at least one pending step, as with a real network.
//
// Not thread-safe: Submit, Advance and the queries belong to one rank loop.
type Loopback struct {
	handlers  map[Rank]Handler
	pending   map[WorkerID]request
	order     []WorkerID
	responses map[WorkerID][]uint64
}

// NewLoopback creates a correlator delivering to the given handlers
func NewLoopback(handlers map[Rank]Handler) *Loopback {
	return &Loopback{
		handlers:  handlers,
		pending:   make(map[WorkerID]request),
		responses: make(map[WorkerID][]uint64),
	}
}

func (l *Loopback) Submit(worker WorkerID, destination Rank, kind MessageKind, payload []uint64) {
	if _, ok := l.pending[worker]; ok {
		Logger.Errorf("worker %d submitted %s while a request is pending", worker, kind)
	}
	delete(l.responses, worker)
	l.pending[worker] = request{
		destination: destination,
		kind:        kind,
		payload:     append([]uint64(nil), payload...),
	}
	l.order = append(l.order, worker)
}

func (l *Loopback) IsComplete(worker WorkerID) bool {
	_, ok := l.responses[worker]
	return ok
}

func (l *Loopback) TakeResponse(worker WorkerID) []uint64 {
	resp, ok := l.responses[worker]
	if !ok {
		return nil
	}
	delete(l.responses, worker)
	return resp
}

// Advance answers all requests submitted before the call, in submission order.
// A request whose handler fails, or whose rank has no handler, stays pending
// and is tried again on the next call. Returns the number of answered requests.
func (l *Loopback) Advance() int {
	order := l.order
	l.order = nil

	answered := 0
	for _, worker := range order {
		req, ok := l.pending[worker]
		if !ok {
			continue
		}

		handler, ok := l.handlers[req.destination]
		if !ok {
			Logger.Errorf("no handler for rank %d, %s of worker %d stays pending", req.destination, req.kind, worker)
			l.order = append(l.order, worker)
			continue
		}

		resp, err := handler.Answer(req.kind, req.payload)
		if err != nil {
			Logger.Warningf("rank %d failed to answer %s of worker %d, resubmitting: %v", req.destination, req.kind, worker, err)
			l.order = append(l.order, worker)
			continue
		}
		if resp == nil {
			resp = []uint64{}
		}
		delete(l.pending, worker)
		l.responses[worker] = resp
		answered++
	}
	return answered
}

// Pending returns the number of requests waiting for Advance
func (l *Loopback) Pending() int {
	return len(l.pending)
}
