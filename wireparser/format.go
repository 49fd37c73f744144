package wireparser

import (
	"fmt"
	"strings"
)

// Format pretty-prints source text. It is a total function built for mid-edit
// input: truncated or unbalanced source re-tokenizes under the relaxed
// grammar and comes back as a syntactically complete document, with exactly
// the missing closing parens synthesized. Comments survive the rewrite and
// appear exactly once each, at their original relative position, even when
// several open forms close in one cascade.
func Format(src string) string {
	toks := tokenizeRelaxed(src)
	f := &formatter{}
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case TokenEOF:
			continue
		case TokenLParen:
			head := ""
			if i+1 < len(toks) && toks[i+1].Kind == TokenSymbol {
				head = toks[i+1].Literal
				i++
				t = toks[i]
			}
			f.openForm(head)
		case TokenRParen:
			f.closeExplicit()
		case TokenComment:
			f.comment(t)
		default:
			f.atom(t)
		}
		f.prevLine = t.End.Line
	}
	f.end()
	return f.out.String()
}

// frameKind classifies an open form for close resolution.
type frameKind int

const (
	frameDoc       frameKind = iota // wire
	frameScreen                     // screen
	frameTop                        // define, layout
	frameOverlay                    // modal, drawer, popover
	frameContainer                  // child-bearing builtins, components, unknowns
	frameLeaf                       // childless builtins, meta, include
)

// classifyForm maps a form head to its frame kind. Unknown names are
// containers: a component call may legitimately hold children, so it stays
// open until an explicit close or a boundary.
func classifyForm(head string) frameKind {
	switch head {
	case "wire":
		return frameDoc
	case "screen":
		return frameScreen
	case "define", "layout":
		return frameTop
	case "repeat":
		return frameContainer
	case "meta", "include":
		return frameLeaf
	}
	if overlayForms[head] {
		return frameOverlay
	}
	if spec, ok := builtinElements[head]; ok {
		if spec.ChildrenAllowed {
			return frameContainer
		}
		return frameLeaf
	}
	return frameContainer
}

type frame struct {
	kind     frameKind
	children int // child forms opened so far
}

type formatter struct {
	stack      []frame
	out        strings.Builder
	cur        strings.Builder // current unflushed output line
	curComment bool            // current line ends in a comment, closers must wrap
	pending    []string        // standalone comments awaiting their anchor
	prevLine   int             // source line of the previously processed token
}

func (f *formatter) indentTo(depth int) string {
	return strings.Repeat("  ", depth)
}

func (f *formatter) started() bool {
	return f.out.Len() > 0 || f.cur.Len() > 0
}

func (f *formatter) flushLine() {
	if f.cur.Len() > 0 {
		f.out.WriteString(f.cur.String())
		f.out.WriteByte('\n')
		f.cur.Reset()
	}
	f.curComment = false
}

// flushPending emits buffered standalone comments, one per line, at the
// current depth. Callers invoke it exactly once per anchor point, which is
// what keeps every comment appearing exactly once.
func (f *formatter) flushPending() {
	if len(f.pending) == 0 {
		return
	}
	f.flushLine()
	ind := f.indentTo(len(f.stack))
	for _, c := range f.pending {
		f.out.WriteString(ind)
		f.out.WriteString(c)
		f.out.WriteByte('\n')
	}
	f.pending = f.pending[:0]
}

// openForm resolves boundary closes, then starts the form on a fresh line.
func (f *formatter) openForm(head string) {
	kind := classifyForm(head)
	switch kind {
	case frameScreen, frameTop:
		f.closeTo(frameDoc)
	case frameOverlay:
		if f.hasFrame(frameScreen) {
			f.closeTo(frameScreen)
		} else {
			f.closeLeaves()
		}
	default:
		f.closeLeaves()
	}

	// Top-level sections after the first get a separating blank line.
	if kind == frameScreen || kind == frameTop {
		needBlank := f.started()
		if n := len(f.stack); n > 0 {
			needBlank = f.stack[n-1].children > 0
		}
		if needBlank {
			f.flushLine()
			f.out.WriteByte('\n')
		}
	}

	f.flushPending()
	if n := len(f.stack); n > 0 {
		f.stack[n-1].children++
	}
	f.flushLine()
	f.cur.WriteString(f.indentTo(len(f.stack)))
	f.cur.WriteByte('(')
	f.cur.WriteString(head)
	f.stack = append(f.stack, frame{kind: kind})
}

// closeLeaves auto-closes leaf frames: a leaf cannot hold the form that is
// about to open, so it must be a finished sibling. Atom tokens never trigger
// this; only a new form does.
func (f *formatter) closeLeaves() {
	for len(f.stack) > 0 && f.stack[len(f.stack)-1].kind == frameLeaf {
		f.closeOne()
	}
}

func (f *formatter) closeTo(kind frameKind) {
	for len(f.stack) > 0 && f.stack[len(f.stack)-1].kind != kind {
		f.closeOne()
	}
}

func (f *formatter) hasFrame(kind frameKind) bool {
	for _, fr := range f.stack {
		if fr.kind == kind {
			return true
		}
	}
	return false
}

// closeOne pops the innermost frame and writes its closer. The paren joins
// the current line unless that line carries a trailing comment, in which case
// it moves to a fresh line at the closed frame's own indent.
func (f *formatter) closeOne() {
	if len(f.stack) == 0 {
		return
	}
	f.stack = f.stack[:len(f.stack)-1]
	if f.curComment {
		f.flushLine()
	}
	if f.cur.Len() == 0 {
		f.cur.WriteString(f.indentTo(len(f.stack)))
	}
	f.cur.WriteByte(')')
}

// closeExplicit handles a ')' from the source. A stray closer with nothing
// open is dropped.
func (f *formatter) closeExplicit() {
	f.flushPending()
	if len(f.stack) == 0 {
		return
	}
	f.closeOne()
}

func (f *formatter) atom(t Token) {
	if f.curComment {
		f.flushLine()
	}
	if f.cur.Len() == 0 {
		f.cur.WriteString(f.indentTo(len(f.stack)))
		f.cur.WriteString(renderAtom(t))
		return
	}
	f.cur.WriteByte(' ')
	f.cur.WriteString(renderAtom(t))
}

// comment routes a comment token: on the same source line as the previous
// token it stays inline at the end of the current line; on its own line it
// buffers until the next anchor (form open, explicit close, or end of input).
func (f *formatter) comment(t Token) {
	if t.Pos.Line == f.prevLine && f.cur.Len() > 0 {
		f.cur.WriteByte(' ')
		f.cur.WriteString(t.Literal)
		f.curComment = true
		return
	}
	f.pending = append(f.pending, t.Literal)
}

// end flushes trailing comments, then closes every frame still open,
// innermost first.
func (f *formatter) end() {
	f.flushPending()
	for len(f.stack) > 0 {
		f.closeOne()
	}
	f.flushLine()
}

func renderAtom(t Token) string {
	switch t.Kind {
	case TokenString:
		return quoteString(t.Literal)
	case TokenKeyword:
		return ":" + t.Literal
	case TokenParamRef:
		return "$" + t.Literal
	case TokenHashRef:
		return "#" + t.Literal
	}
	return t.Literal
}

// quoteString renders a string literal using only escapes the tokenizer
// understands, so formatted output always re-tokenizes to the same value.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
