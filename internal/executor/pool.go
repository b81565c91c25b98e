package executor

import (
	"strconv"
	"sync"
	"sync/atomic"

	"jhp/internal/bindings"
	"jhp/internal/logging"
	"jhp/internal/metrics"
	"jhp/internal/render"
)

// Pool owns a fixed set of Executors and dispatches incoming work to them
// round-robin.
type Pool struct {
	executors []*Executor
	next      uint64

	wg      sync.WaitGroup
	started bool
	joined  bool
	mu      sync.Mutex
}

// NewPool builds n Executors, each with the given mailbox depth, all
// sharing pipeline and installers (installers back EvalRequests; pipeline
// carries its own installer chain for RenderRequests).
func NewPool(n, mailboxDepth int, pipeline *render.Pipeline, installers []bindings.Installer) *Pool {
	p := &Pool{executors: make([]*Executor, n)}
	for i := 0; i < n; i++ {
		p.executors[i] = NewExecutor(i, mailboxDepth, pipeline, installers)
	}
	return p
}

// Start launches one goroutine per executor. Safe to call once.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for _, e := range p.executors {
		e := e
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			e.Run()
		}()
	}
	logging.Get(logging.CategoryExecutor).Infof("pool started with %d executors", len(p.executors))
}

// Submit dispatches op to the next executor in round-robin order.
func (p *Pool) Submit(op Op) {
	idx := atomic.AddUint64(&p.next, 1) % uint64(len(p.executors))
	e := p.executors[idx]
	e.Submit(op)
	metrics.MailboxDepth.WithLabelValues(strconv.Itoa(int(idx))).Set(float64(e.MailboxLen()))
}

// RenderAndWait submits a render request to the pool and waits for the result.
func (p *Pool) RenderAndWait(req *RenderRequest) RenderResult {
	respond := make(chan RenderResult, 1)
	req.RespondTo = respond
	p.Submit(Op{Render: req})
	return <-respond
}

// EvalAndWait submits an eval request round-robin and waits for its result.
// Every call gets a fresh JS context; SessionID is carried through for log
// correlation only.
func (p *Pool) EvalAndWait(req *EvalRequest) EvalResult {
	respond := make(chan EvalResult, 1)
	req.RespondTo = respond
	p.Submit(Op{Eval: req})
	return <-respond
}

// Join shuts down every executor and waits for its goroutine to exit.
// Shutdown ops are enqueued under a short-held lock; the waiting happens
// outside it. A second Join is a no-op.
func (p *Pool) Join() {
	p.mu.Lock()
	if p.joined || !p.started {
		p.mu.Unlock()
		return
	}
	p.joined = true

	var shutdowns []chan struct{}
	for _, e := range p.executors {
		done := make(chan struct{})
		e.Submit(Op{Shutdown: &ShutdownRequest{RespondTo: done}})
		shutdowns = append(shutdowns, done)
	}
	p.mu.Unlock()

	for _, done := range shutdowns {
		<-done
	}
	p.wg.Wait()
}
