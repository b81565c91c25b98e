// Package render executes a parsed document's blocks against a fresh JS
// context, one block at a time, so that an uncaught exception can be
// reported with the precise source origin of the block that raised it.
package render

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"jhp/internal/bindings"
	"jhp/internal/metrics"
	"jhp/internal/parser"
)

// Pipeline holds the installer chain shared by every render: document root
// and extensions dir bindings plus whatever native extension objects a
// document's includes pull in.
type Pipeline struct {
	installers []bindings.Installer
}

// New builds a Pipeline from the given base installers, run in order
// against every fresh runtime before any document block executes.
func New(installers ...bindings.Installer) *Pipeline {
	return &Pipeline{installers: installers}
}

// Render executes blocks against a brand new goja.Runtime and returns the
// accumulated output. A document-level Go error (installer failure) is
// returned as err; an uncaught JS exception from a block instead appends an
// error trailer to the output and is not treated as a pipeline failure,
// matching the engine's "best effort output, trailer on exception" policy.
func (p *Pipeline) Render(resourceName string, blocks []parser.Block) (string, error) {
	rt := goja.New()
	var buf strings.Builder

	installers := make([]bindings.Installer, 0, len(p.installers)+1)
	installers = append(installers, p.installers...)
	installers = append(installers, bindings.Echo(&buf))

	for _, inst := range installers {
		if err := inst(rt); err != nil {
			metrics.RendersTotal.WithLabelValues("install_error").Inc()
			return "", fmt.Errorf("install bindings: %w", err)
		}
	}

	outcome := "ok"
	for _, b := range blocks {
		// Html blocks are appended directly to the buffer without
		// round-tripping through the engine: no escaping concerns beyond
		// the parser's own, and no script-origin bookkeeping needed.
		if b.Kind == parser.Html {
			buf.WriteString(b.Content)
			continue
		}

		src := synthesize(b)
		if _, err := rt.RunScript(resourceName, src); err != nil {
			buf.WriteString(errorTrailer(resourceName, b, err))
			outcome = "exception"
			break
		}
	}
	metrics.RendersTotal.WithLabelValues(outcome).Inc()

	return buf.String(), nil
}

// synthesize produces the JS source for one Script/Expression block, padded
// with leading blank lines and spaces so that positions goja reports for a
// runtime error line up with the block's original line and column in
// resourceName. Content is never trimmed here: the parser already hands
// Script content verbatim (preserving interior whitespace) precisely so
// that the padding computed from the block's column lines up byte-for-byte
// with where that content originally sat after `<?`. An Expression block
// whose content starts before column 13 cannot be padded back past the
// 12-byte `echo(String(` prefix, so goja reports its columns shifted right
// by the difference; its line is still exact.
func synthesize(b parser.Block) string {
	pad := strings.Repeat("\n", maxInt(b.Line-1, 0))

	switch b.Kind {
	case parser.Expression:
		const prefix = "echo(String("
		lead := maxInt(b.Column-1-len(prefix), 0)
		return pad + strings.Repeat(" ", lead) + prefix + b.Content + "));"
	default: // parser.Script
		lead := maxInt(b.Column-1, 0)
		return pad + strings.Repeat(" ", lead) + b.Content
	}
}

// errorTrailer formats the diagnostic appended to the output buffer when a
// block throws: the engine-reported failure position, the message, and the
// stack. Because synthesize pads each block to its original coordinates,
// the positions goja reports are already post-origin-offset, so the first
// resourceName frame in the stack is the real failure position inside the
// original file; the block's own start is only the fallback when no frame
// names the resource (e.g. a throw from host code). goja's
// Exception.String() already leads with the message, so it is used whole
// rather than duplicating the message above the stack.
func errorTrailer(resourceName string, b parser.Block, err error) string {
	line, col := b.Line, b.Column
	msg := err.Error()
	if exc, ok := err.(*goja.Exception); ok {
		msg = strings.TrimRight(exc.String(), "\n")
		if l, c, ok := stackPosition(msg, resourceName); ok {
			line, col = l, c
		}
	}
	return fmt.Sprintf("\n<!-- ERROR -->\n%s:%d:%d\n%s\n", resourceName, line, col, msg)
}

// stackPosition scans a goja stack trace for the first frame of the form
// "<resourceName>:<line>:<col>" and returns that position.
func stackPosition(stack, resourceName string) (line, col int, ok bool) {
	marker := resourceName + ":"
	for rest := stack; ; {
		idx := strings.Index(rest, marker)
		if idx < 0 {
			return 0, 0, false
		}
		rest = rest[idx+len(marker):]
		if l, c, good := parseLineCol(rest); good {
			return l, c, true
		}
	}
}

func parseLineCol(s string) (line, col int, ok bool) {
	line, s, ok = leadingInt(s)
	if !ok || !strings.HasPrefix(s, ":") {
		return 0, 0, false
	}
	col, _, ok = leadingInt(s[1:])
	if !ok {
		return 0, 0, false
	}
	return line, col, true
}

func leadingInt(s string) (int, string, bool) {
	i, n := 0, 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	return n, s[i:], true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
