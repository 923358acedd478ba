package cleanup

import (
	"context"

	"github.com/ValentinKolb/dKG/lib/comm"
)

// Worker is a resumable computation driven by repeated calls to Work
type Worker interface {
	Work()
	IsDone() bool
	WorkerID() comm.WorkerID
}

// Pool steps a set of workers cooperatively on the calling goroutine. Every
// round calls Work once on each live worker, then advance once so the
// messaging layer can deliver requests and responses.
type Pool struct {
	live     []Worker
	finished []Worker
	rounds   uint64
}

// NewPool creates a pool with the given workers
func NewPool(workers ...Worker) *Pool {
	return &Pool{live: append([]Worker(nil), workers...)}
}

// Add schedules another worker
func (p *Pool) Add(w Worker) {
	p.live = append(p.live, w)
}

// Round steps all live workers once. Returns the number of workers still live.
func (p *Pool) Round(advance func()) int {
	p.rounds++
	for _, w := range p.live {
		w.Work()
	}
	if advance != nil {
		advance()
	}

	live := p.live[:0]
	for _, w := range p.live {
		if w.IsDone() {
			p.finished = append(p.finished, w)
		} else {
			live = append(live, w)
		}
	}
	for i := len(live); i < len(p.live); i++ {
		p.live[i] = nil
	}
	p.live = live
	return len(p.live)
}

// Run executes rounds until all workers are done. The context is only checked
// between rounds, a worker with a pending request is never interrupted mid step.
func (p *Pool) Run(ctx context.Context, advance func()) error {
	for len(p.live) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.Round(advance)
	}
	return nil
}

// Finished returns the workers that are done, in completion order
func (p *Pool) Finished() []Worker {
	return p.finished
}

// Live returns the number of workers that are not done
func (p *Pool) Live() int {
	return len(p.live)
}

// Rounds returns the number of executed rounds
func (p *Pool) Rounds() uint64 {
	return p.rounds
}
