package render

import (
	"strings"
	"testing"

	"jhp/internal/parser"
)

func TestRenderMixedDocument(t *testing.T) {
	p := New()
	doc := parser.New("Hello <?= name ?>!\n<? name = name + \"!\"; ?>").Parse()
	// no `name` declared: expect the expression block to throw and a
	// trailer to be appended, with HTML up to that point preserved.
	out, err := p.Render("index.jhp", doc.Blocks)
	if err != nil {
		t.Fatalf("Render returned a pipeline error: %v", err)
	}
	if !strings.HasPrefix(out, "Hello ") {
		t.Fatalf("expected literal HTML to render before the failing expression, got %q", out)
	}
	if !strings.Contains(out, "<!-- ERROR -->") {
		t.Fatalf("expected an error trailer, got %q", out)
	}
	if !strings.Contains(out, "index.jhp:1:") {
		t.Fatalf("expected the trailer to cite the failing block's origin, got %q", out)
	}
}

func TestRenderSuccessfulDocument(t *testing.T) {
	p := New()
	doc := parser.New("<? let x = 21; ?>Answer: <?= x * 2 ?>").Parse()
	out, err := p.Render("index.jhp", doc.Blocks)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Answer: 42" {
		t.Fatalf("got %q want %q", out, "Answer: 42")
	}
}

func TestRenderTrailerReportsEnginePositionInsideBlock(t *testing.T) {
	p := New()
	// The block spans several lines and throws on its fourth; the trailer
	// must cite the failing line, not the block's first character.
	doc := parser.New("<?\nlet a = 1;\nlet b = a + 1;\nexplode(b);\n?>").Parse()
	out, err := p.Render("multi.jhp", doc.Blocks)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<!-- ERROR -->\nmulti.jhp:4:") {
		t.Fatalf("expected the trailer to cite line 4 where the block threw, got %q", out)
	}
	if !strings.Contains(out, "explode is not defined") {
		t.Fatalf("expected the engine message in the trailer, got %q", out)
	}
}

func TestRenderIsolatesStateAcrossCalls(t *testing.T) {
	p := New()
	doc := parser.New("<? var leaked = 1; ?>").Parse()
	if _, err := p.Render("a.jhp", doc.Blocks); err != nil {
		t.Fatalf("first render: %v", err)
	}

	doc2 := parser.New("<?= typeof leaked ?>").Parse()
	out, err := p.Render("b.jhp", doc2.Blocks)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if out != "undefined" {
		t.Fatalf("expected a fresh context with no state from the prior render, got %q", out)
	}
}
