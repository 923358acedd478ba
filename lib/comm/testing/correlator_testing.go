package testing

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/dKG/lib/comm"
)

// Setup is a correlator under test. Advance must deliver outstanding
// requests and responses (it may be called many times); Close releases resources.
type Setup struct {
	Correlator comm.Correlator
	Advance    func()
	Close      func()
}

// CorrelatorFactory creates a correlator delivering to the given handlers
type CorrelatorFactory func(t *testing.T, handlers map[comm.Rank]comm.Handler) Setup

// echoHandler answers with [rank, kind, payload...]
func echoHandler(rank comm.Rank) comm.Handler {
	return comm.HandlerFunc(func(kind comm.MessageKind, payload []uint64) ([]uint64, error) {
		resp := []uint64{uint64(rank), uint64(kind)}
		return append(resp, payload...), nil
	})
}

var errRefused = errors.New("refused")

func failingHandler() comm.Handler {
	return comm.HandlerFunc(func(kind comm.MessageKind, payload []uint64) ([]uint64, error) {
		return nil, errRefused
	})
}

// flakyHandler fails the first failures requests, then echoes like echoHandler
func flakyHandler(rank comm.Rank, failures int64) comm.Handler {
	var calls atomic.Int64
	echo := echoHandler(rank)
	return comm.HandlerFunc(func(kind comm.MessageKind, payload []uint64) ([]uint64, error) {
		if calls.Add(1) <= failures {
			return nil, errRefused
		}
		return echo.Answer(kind, payload)
	})
}

// awaitResponse advances until the worker's response is complete or the timeout hits
func awaitResponse(t *testing.T, s Setup, worker comm.WorkerID) []uint64 {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !s.Correlator.IsComplete(worker) {
		if time.Now().After(deadline) {
			t.Fatalf("response for worker %d did not arrive", worker)
		}
		s.Advance()
		time.Sleep(time.Millisecond)
	}
	return s.Correlator.TakeResponse(worker)
}

// RunCorrelatorTests runs the behavioural tests every Correlator must pass
func RunCorrelatorTests(t *testing.T, name string, factory CorrelatorFactory) {
	handlers := func() map[comm.Rank]comm.Handler {
		return map[comm.Rank]comm.Handler{
			0: echoHandler(0),
			1: echoHandler(1),
			2: failingHandler(),
			3: flakyHandler(3, 2),
		}
	}

	t.Run(name+"/PendingUntilAdvanced", func(t *testing.T) {
		s := factory(t, handlers())
		defer s.Close()

		s.Correlator.Submit(1, 1, comm.KindVertexEdges, []uint64{42})
		if s.Correlator.IsComplete(1) {
			t.Error("a request must not complete before the messaging layer advanced")
		}
		if s.Correlator.TakeResponse(1) != nil {
			t.Error("TakeResponse should return nil while pending")
		}

		resp := awaitResponse(t, s, 1)
		if len(resp) != 3 || resp[0] != 1 || resp[1] != uint64(comm.KindVertexEdges) || resp[2] != 42 {
			t.Errorf("unexpected response %v", resp)
		}
	})

	t.Run(name+"/TakeResponseForgets", func(t *testing.T) {
		s := factory(t, handlers())
		defer s.Close()

		s.Correlator.Submit(7, 0, comm.KindVertexPathsSize, []uint64{1})
		awaitResponse(t, s, 7)

		if s.Correlator.IsComplete(7) {
			t.Error("a taken response must not be complete anymore")
		}
		if s.Correlator.TakeResponse(7) != nil {
			t.Error("a response can only be taken once")
		}
	})

	t.Run(name+"/CorrelatesByWorker", func(t *testing.T) {
		s := factory(t, handlers())
		defer s.Close()

		const workers = 50
		for w := comm.WorkerID(0); w < workers; w++ {
			s.Correlator.Submit(w, comm.Rank(w%2), comm.KindVertexPath, []uint64{uint64(w) * 3, uint64(w)})
		}
		for w := comm.WorkerID(0); w < workers; w++ {
			resp := awaitResponse(t, s, w)
			if len(resp) != 4 {
				t.Fatalf("worker %d: unexpected response %v", w, resp)
			}
			if resp[0] != uint64(w%2) {
				t.Errorf("worker %d: answered by rank %d", w, resp[0])
			}
			if resp[2] != uint64(w)*3 || resp[3] != uint64(w) {
				t.Errorf("worker %d: got the response of another worker %v", w, resp)
			}
		}
	})

	t.Run(name+"/SequentialRequests", func(t *testing.T) {
		s := factory(t, handlers())
		defer s.Close()

		for i := uint64(0); i < 10; i++ {
			s.Correlator.Submit(3, 0, comm.KindVertexEdges, []uint64{i})
			resp := awaitResponse(t, s, 3)
			if len(resp) != 3 || resp[2] != i {
				t.Fatalf("request %d: unexpected response %v", i, resp)
			}
		}
	})

	t.Run(name+"/FailedRequestIsResubmitted", func(t *testing.T) {
		s := factory(t, handlers())
		defer s.Close()

		s.Correlator.Submit(9, 3, comm.KindVertexEdges, []uint64{11})
		resp := awaitResponse(t, s, 9)
		if len(resp) != 3 || resp[0] != 3 || resp[2] != 11 {
			t.Errorf("expected the answer of rank 3 after its failures, got %v", resp)
		}
	})

	t.Run(name+"/FailingRankNeverCompletes", func(t *testing.T) {
		s := factory(t, handlers())
		defer s.Close()

		s.Correlator.Submit(5, 2, comm.KindVertexEdges, []uint64{1})
		for i := 0; i < 50; i++ {
			s.Advance()
			time.Sleep(time.Millisecond)
		}
		if s.Correlator.IsComplete(5) || s.Correlator.TakeResponse(5) != nil {
			t.Error("a request the handler keeps failing must stay pending")
		}
	})
}
