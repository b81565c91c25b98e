package parser

import (
	"strings"
	"unicode/utf8"
)

// Parser is a streaming two-mode cursor over a JHP source string.
type Parser struct {
	content string
	pos     int // byte offset
	line    int // 1-based
	col     int // 1-based, over Unicode scalar values
	nesting int
}

// New creates a Parser over content. Parsing does not begin until Parse is called.
func New(content string) *Parser {
	return &Parser{content: content, line: 1, col: 1}
}

// Parse resets cursor state and parses content into a Document.
func (p *Parser) Parse() Document {
	p.pos = 0
	p.line = 1
	p.col = 1
	p.nesting = 0

	var doc Document
	for p.pos < len(p.content) {
		if p.lookahead("<?") {
			doc.Blocks = append(doc.Blocks, p.parseScriptBlock())
		} else {
			doc.Blocks = append(doc.Blocks, p.parseHTMLBlock())
		}
	}
	return doc
}

func (p *Parser) parseHTMLBlock() Block {
	startLine, startCol := p.line, p.col
	var buf strings.Builder

	for p.pos < len(p.content) && !p.lookahead("<?") {
		buf.WriteRune(p.consume())
	}

	return Block{
		Kind:    Html,
		Content: escapeForTemplateLiteral(buf.String()),
		Line:    startLine,
		Column:  startCol,
		Nesting: p.nesting,
	}
}

func (p *Parser) parseScriptBlock() Block {
	startLine := p.line
	p.consume() // <
	p.consume() // ?
	fenceCol := p.col

	var buf strings.Builder
	for p.pos < len(p.content) && !p.lookahead("?>") {
		buf.WriteRune(p.consume())
	}
	if p.lookahead("?>") {
		p.consume() // ?
		p.consume() // >
	}

	body := buf.String()
	trimmedStart := strings.TrimLeft(body, " \t\r\n")
	trimmedEnd := strings.TrimRight(body, " \t\r\n")

	if strings.HasPrefix(trimmedStart, "}") {
		if p.nesting > 0 {
			p.nesting--
		}
	}
	level := p.nesting
	if strings.HasSuffix(trimmedEnd, "{") {
		p.nesting++
	}

	if strings.HasPrefix(trimmedStart, "=") {
		leadingWS := runeLen(body) - runeLen(trimmedStart)
		afterEq := trimmedStart[1:]
		exprLeadingWS := runeLen(afterEq) - runeLen(strings.TrimLeft(afterEq, " \t\r\n"))
		column := fenceCol + leadingWS + 1 + exprLeadingWS
		return Block{
			Kind:    Expression,
			Content: strings.TrimRight(strings.TrimLeft(afterEq, " \t\r\n"), " \t\r\n"),
			Line:    startLine,
			Column:  column,
			Nesting: level,
		}
	}

	return Block{
		Kind:    Script,
		Content: body,
		Line:    startLine,
		Column:  fenceCol,
		Nesting: level,
	}
}

// lookahead reports whether pat occurs at the current byte position.
func (p *Parser) lookahead(pat string) bool {
	if p.pos+len(pat) > len(p.content) {
		return false
	}
	return p.content[p.pos:p.pos+len(pat)] == pat
}

// consume decodes and returns the rune at the current position, advancing
// pos by its UTF-8 byte length and updating line/column bookkeeping.
func (p *Parser) consume() rune {
	r, size := utf8.DecodeRuneInString(p.content[p.pos:])
	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// escapeForTemplateLiteral replaces the three characters that would
// terminate a `...` template literal or break interpolation safety.
func escapeForTemplateLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString("&#39;")
		case '"':
			b.WriteString("&quot;")
		case '`':
			b.WriteString("&#96;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
