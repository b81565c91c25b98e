package executor

import (
	"strings"
	"testing"

	"github.com/dop251/goja"
	"go.uber.org/goleak"

	"jhp/internal/bindings"
	"jhp/internal/parser"
	"jhp/internal/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestPool(t *testing.T, n int) *Pool {
	t.Helper()
	p := NewPool(n, 16, render.New(), []bindings.Installer{bindings.Global()})
	p.Start()
	t.Cleanup(p.Join)
	return p
}

func TestPoolRendersAcrossExecutors(t *testing.T) {
	p := newTestPool(t, 4)
	doc := parser.New("<?= 6 * 7 ?>").Parse()

	for i := 0; i < 20; i++ {
		result := p.RenderAndWait(&RenderRequest{ResourceName: "x.jhp", Blocks: doc.Blocks})
		if result.Err != nil {
			t.Fatalf("render %d: %v", i, result.Err)
		}
		if result.Output != "42" {
			t.Fatalf("render %d: got %q want %q", i, result.Output, "42")
		}
	}
}

func TestPoolEvalReturnsTheExpressionValue(t *testing.T) {
	p := newTestPool(t, 4)

	result := p.EvalAndWait(&EvalRequest{SessionID: "s1", Source: "1 + 1"})
	if result.Err != nil {
		t.Fatalf("eval: %v", result.Err)
	}
	if result.Value != "2" {
		t.Fatalf("got %q want %q", result.Value, "2")
	}
}

func TestPoolEvalKeepsNoStateBetweenCalls(t *testing.T) {
	p := newTestPool(t, 4)

	p.EvalAndWait(&EvalRequest{SessionID: "s1", Source: "var mine = 'a';"})
	result := p.EvalAndWait(&EvalRequest{SessionID: "s1", Source: "typeof mine"})
	if result.Err != nil {
		t.Fatalf("eval: %v", result.Err)
	}
	if result.Value != "undefined" {
		t.Fatalf("expected no state to carry across eval calls, got %q", result.Value)
	}
}

func TestPoolEvalCollectsEchoOutput(t *testing.T) {
	p := newTestPool(t, 2)

	result := p.EvalAndWait(&EvalRequest{SessionID: "s1", Source: `echo("a"); echo("b"); "c"`})
	if result.Err != nil {
		t.Fatalf("eval: %v", result.Err)
	}
	if result.Value != "abc" {
		t.Fatalf("got %q, want echoed output followed by the completion value", result.Value)
	}
}

func TestPoolRecoversFromPanicAndKeepsServing(t *testing.T) {
	// An installer that panics outright, standing in for a crashing native
	// extension. The render must fail with an error reply while the
	// executor survives to serve the next work item.
	bomb := bindings.Installer(func(rt *goja.Runtime) error { panic("installer exploded") })
	p := NewPool(1, 4, render.New(bomb), nil)
	p.Start()
	t.Cleanup(p.Join)

	doc := parser.New("<?= 1 ?>").Parse()
	result := p.RenderAndWait(&RenderRequest{ResourceName: "x.jhp", Blocks: doc.Blocks})
	if result.Err == nil || !strings.Contains(result.Err.Error(), "panicked") {
		t.Fatalf("expected a panic to surface as an error reply, got %+v", result)
	}

	// The single executor recovered and still drains its mailbox.
	eval := p.EvalAndWait(&EvalRequest{SessionID: "s1", Source: "2 + 2"})
	if eval.Err != nil {
		t.Fatalf("eval after recovered panic: %v", eval.Err)
	}
	if eval.Value != "4" {
		t.Fatalf("got %q want %q", eval.Value, "4")
	}
}

func TestPoolJoinStopsAllExecutors(t *testing.T) {
	p := NewPool(3, 4, render.New(), nil)
	p.Start()
	p.Join()
	// A second Join is a no-op.
	p.Join()
}
