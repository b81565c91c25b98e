package executor

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/dop251/goja"

	"jhp/internal/bindings"
	"jhp/internal/logging"
	"jhp/internal/render"
)

// Executor is one OS-thread-affine worker: its run loop locks itself to a
// single OS thread for its lifetime and drains its mailbox in order, so
// every goja.Runtime it touches is only ever used from that one goroutine.
type Executor struct {
	id       int
	mailbox  chan Op
	pipeline *render.Pipeline

	installers []bindings.Installer
}

// NewExecutor builds an Executor with a bounded mailbox of the given
// capacity, running render requests through pipeline and eval requests
// against installers.
func NewExecutor(id, mailboxDepth int, pipeline *render.Pipeline, installers []bindings.Installer) *Executor {
	return &Executor{
		id:         id,
		mailbox:    make(chan Op, mailboxDepth),
		pipeline:   pipeline,
		installers: installers,
	}
}

// Submit enqueues op on this executor's mailbox, blocking if it is full.
func (e *Executor) Submit(op Op) {
	e.mailbox <- op
}

// MailboxLen reports the number of items currently queued.
func (e *Executor) MailboxLen() int {
	return len(e.mailbox)
}

// Run drains the mailbox until a ShutdownRequest is processed. Call it in
// its own goroutine; it returns once shutdown completes.
func (e *Executor) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := logging.Get(logging.CategoryExecutor)
	log.Debugf("executor %d starting", e.id)

	for op := range e.mailbox {
		switch {
		case op.Render != nil:
			e.dispatchRender(op.Render)
		case op.Eval != nil:
			e.dispatchEval(op.Eval)
		case op.Shutdown != nil:
			log.Debugf("executor %d shutting down", e.id)
			close(op.Shutdown.RespondTo)
			return
		}
	}
}

// dispatchRender runs one render behind a recover boundary: a Go panic in a
// native extension or the engine fails that one request with an error
// reply, and the executor keeps draining its mailbox. handleRender replies
// only as its final statement, so the recovery path is the sole sender when
// it fires.
func (e *Executor) dispatchRender(req *RenderRequest) {
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryExecutor).Errorf("PANIC RECOVERED in executor %d rendering %s: %v", e.id, req.ResourceName, r)
			req.RespondTo <- RenderResult{Err: fmt.Errorf("executor %d panicked rendering %s: %v", e.id, req.ResourceName, r)}
		}
	}()
	e.handleRender(req)
}

func (e *Executor) dispatchEval(req *EvalRequest) {
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryExecutor).Errorf("PANIC RECOVERED in executor %d evaluating for session %s: %v", e.id, req.SessionID, r)
			req.RespondTo <- EvalResult{Err: fmt.Errorf("executor %d panicked: %v", e.id, r)}
		}
	}()
	e.handleEval(req)
}

func (e *Executor) handleRender(req *RenderRequest) {
	out, err := e.pipeline.Render(req.ResourceName, req.Blocks)
	req.RespondTo <- RenderResult{Output: out, Err: err}
}

// handleEval evaluates req.Source against a brand new JS context, installed
// the same way a render's context is, echo included. No state survives
// between EvalRequests, by design: the engine keeps no persistent
// per-client session state.
func (e *Executor) handleEval(req *EvalRequest) {
	rt := goja.New()
	var buf strings.Builder
	installers := append(append([]bindings.Installer{}, e.installers...), bindings.Echo(&buf))
	for _, inst := range installers {
		if err := inst(rt); err != nil {
			req.RespondTo <- EvalResult{Err: fmt.Errorf("install bindings: %w", err)}
			return
		}
	}

	v, err := rt.RunString(req.Source)
	if err != nil {
		req.RespondTo <- EvalResult{Err: err}
		return
	}

	// Echoed output precedes the completion value, the same order a
	// document renders in.
	out := buf.String()
	if v != nil && !goja.IsUndefined(v) {
		out += v.String()
	}
	req.RespondTo <- EvalResult{Value: out}
}
