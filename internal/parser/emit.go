package parser

import "strings"

// ToJS converts a Block sequence into a single JavaScript source string for
// bulk evaluation. This is a convenience helper; the preferred execution
// path is per-block (see internal/render) because it carries precise
// origins for diagnostics.
func ToJS(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case Html:
			lines = append(lines, "echo(`"+b.Content+"`);")
		case Expression:
			lines = append(lines, "echo(String("+strings.TrimSpace(b.Content)+"));")
		case Script:
			lines = append(lines, strings.TrimSpace(b.Content))
		}
	}
	return strings.Join(lines, "\n")
}
