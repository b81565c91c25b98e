// Package executor runs JS work items on a fixed pool of OS-thread-affine
// workers, each owning one goja.Runtime at a time. A bounded mailbox per
// worker provides backpressure instead of unbounded queuing.
package executor

import "jhp/internal/parser"

// Op is one unit of work submitted to an Executor's mailbox.
type Op struct {
	Render   *RenderRequest
	Eval     *EvalRequest
	Shutdown *ShutdownRequest
}

// RenderRequest asks the executor to run a freshly parsed document's blocks
// against a brand new JS context and return the accumulated echo output.
type RenderRequest struct {
	Blocks       []parser.Block
	ResourceName string
	RespondTo    chan<- RenderResult
}

// RenderResult is a RenderRequest's outcome.
type RenderResult struct {
	Output string
	Err    error
}

// EvalRequest asks the executor to evaluate one script against a brand new
// JS context, used by the interactive REPL. SessionID identifies the
// calling REPL session for log correlation only; no state carries forward
// between EvalRequests, matching the engine's no-persistent-session-state
// policy.
type EvalRequest struct {
	SessionID string
	Source    string
	RespondTo chan<- EvalResult
}

// EvalResult is an EvalRequest's outcome.
type EvalResult struct {
	Value string
	Err   error
}

// ShutdownRequest asks the executor's run loop to exit after draining its
// mailbox. RespondTo is closed once the executor has stopped.
type ShutdownRequest struct {
	RespondTo chan<- struct{}
}
