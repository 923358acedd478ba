package comm_test

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/dKG/lib/comm"
	corrtesting "github.com/ValentinKolb/dKG/lib/comm/testing"
	"github.com/ValentinKolb/dKG/lib/kmer"
)

func TestLoopback(t *testing.T) {
	corrtesting.RunCorrelatorTests(t, "Loopback", func(t *testing.T, handlers map[comm.Rank]comm.Handler) corrtesting.Setup {
		l := comm.NewLoopback(handlers)
		return corrtesting.Setup{Correlator: l, Advance: func() { l.Advance() }, Close: func() {}}
	})
}

func TestLoopbackUnknownRank(t *testing.T) {
	l := comm.NewLoopback(map[comm.Rank]comm.Handler{})
	l.Submit(1, 5, comm.KindVertexEdges, []uint64{1})
	if l.Pending() != 1 {
		t.Fatalf("expected 1 pending request, got %d", l.Pending())
	}
	for i := 0; i < 3; i++ {
		if n := l.Advance(); n != 0 {
			t.Errorf("a request to an unknown rank cannot be answered, got %d", n)
		}
	}
	if l.IsComplete(1) || l.Pending() != 1 {
		t.Error("a request to an unknown rank stays pending")
	}
}

func TestLoopbackResubmitsFailedRequest(t *testing.T) {
	failures := 2
	handler := comm.HandlerFunc(func(kind comm.MessageKind, payload []uint64) ([]uint64, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("busy")
		}
		return []uint64{1, 4, 0}, nil
	})
	l := comm.NewLoopback(map[comm.Rank]comm.Handler{1: handler})
	l.Submit(3, 1, comm.KindVertexEdges, []uint64{9})

	for i := 0; i < 2; i++ {
		if n := l.Advance(); n != 0 || l.IsComplete(3) {
			t.Fatalf("advance %d: a failed request must not complete", i)
		}
	}
	if n := l.Advance(); n != 1 {
		t.Fatalf("expected the third attempt to be answered, got %d", n)
	}
	if resp := l.TakeResponse(3); len(resp) != 3 || resp[1] != 4 {
		t.Errorf("unexpected response %v", resp)
	}
	if l.Pending() != 0 {
		t.Errorf("nothing should be pending, got %d", l.Pending())
	}
}

func TestRouter(t *testing.T) {
	const w = 9
	r := comm.Router{Ranks: 4, WordSize: w}
	counts := make([]int, 4)

	for key := uint64(0); key < 4000; key++ {
		rank := r.VertexRank(key)
		if rank < 0 || rank >= 4 {
			t.Fatalf("rank %d out of range", rank)
		}
		if r.VertexRank(kmer.Complement(key, w)) != rank {
			t.Fatalf("both strands of %d must have the same owner", key)
		}
		counts[rank]++
	}
	for rank, n := range counts {
		if n < 700 {
			t.Errorf("rank %d owns only %d of 4000 keys", rank, n)
		}
	}

	if (comm.Router{Ranks: 1, WordSize: w}).VertexRank(123) != 0 {
		t.Error("a single rank owns everything")
	}
	if !r.Owns(r.VertexRank(77))(77) {
		t.Error("Owns should agree with VertexRank")
	}
}

func TestMessageKindString(t *testing.T) {
	if comm.KindVertexPathsSize.String() != "VERTEX_PATHS_SIZE" {
		t.Errorf("unexpected name %s", comm.KindVertexPathsSize)
	}
	if comm.MessageKind(99).String() != "UNKNOWN(99)" {
		t.Errorf("unexpected name %s", comm.MessageKind(99))
	}
}
