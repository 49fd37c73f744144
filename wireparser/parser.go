package wireparser

import (
	"fmt"
	"math"
	"strconv"
)

// maxNestingDepth rejects pathologically nested input before the recursive
// descent pass runs.
const maxNestingDepth = 1000

// Parse tokenizes and parses source text into a WireDocument without
// resolving includes. Malformed forms are recorded and recovered from, so one
// call surfaces every independent error; only a missing (wire ...) wrapper or
// a tokenizer failure aborts outright.
func Parse(src string) *ParseResult {
	tokens, err := Tokenize(src)
	if err != nil {
		pe := &ParseError{Message: err.Error()}
		if le, ok := err.(*LexError); ok {
			pe = &le.ParseError
		}
		return &ParseResult{Errors: []*ParseError{pe}}
	}

	known, fatal := collectDefinedNames(tokens)
	if fatal != nil {
		return &ParseResult{Errors: []*ParseError{fatal}}
	}

	p := &parser{toks: tokens, known: known}
	doc := p.parseDocument()
	return &ParseResult{
		Success:  doc != nil && len(p.errs) == 0,
		Document: doc,
		Errors:   p.errs,
	}
}

// collectDefinedNames is the symbol-collection pass: it scans the raw token
// stream for (define name ...) forms directly under the top-level wire form,
// so components can be referenced before their definition is reached.
func collectDefinedNames(toks []Token) (map[string]bool, *ParseError) {
	known := make(map[string]bool)
	depth := 0
	for i, t := range toks {
		switch t.Kind {
		case TokenLParen:
			depth++
			if depth > maxNestingDepth {
				return nil, &ParseError{
					Message: fmt.Sprintf("nesting depth exceeds %d", maxNestingDepth),
					Pos:     t.Pos,
				}
			}
			if depth == 2 && i+2 < len(toks) &&
				toks[i+1].Kind == TokenSymbol && toks[i+1].Literal == "define" &&
				toks[i+2].Kind == TokenSymbol {
				known[toks[i+2].Literal] = true
			}
		case TokenRParen:
			if depth > 0 {
				depth--
			}
		}
	}
	return known, nil
}

type parser struct {
	toks  []Token
	pos   int
	last  Token // most recently consumed token
	known map[string]bool
	errs  []*ParseError
}

func (p *parser) peek() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *parser) peekAhead(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	t := p.peek()
	if t.Kind != TokenEOF {
		p.pos++
		p.last = t
	}
	return t
}

func (p *parser) errorf(pos Position, format string, args ...any) {
	p.errs = append(p.errs, &ParseError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *parser) expectedf(expected string, got Token) {
	p.errorf(got.Pos, "expected %s, got %s", expected, describeToken(got))
}

func describeToken(t Token) string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenLParen, TokenRParen:
		return t.Kind.String()
	}
	return fmt.Sprintf("%s (%q)", t.Kind, t.Literal)
}

// skipToMatchingClose discards tokens until the current form's closing paren
// has been consumed, balancing nested parens along the way. Returns the end
// position of the last consumed token.
func (p *parser) skipToMatchingClose() Position {
	depth := 1
	for {
		t := p.peek()
		if t.Kind == TokenEOF {
			return p.last.End
		}
		p.next()
		switch t.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return t.End
			}
		}
	}
}

// resyncToNextTopForm discards tokens until the next recognizable top-level
// form opens, or the enclosing wire form closes.
func (p *parser) resyncToNextTopForm() {
	for {
		t := p.peek()
		switch t.Kind {
		case TokenEOF, TokenRParen:
			return
		case TokenLParen:
			head := p.peekAhead(1)
			if head.Kind == TokenSymbol && topLevelForms[head.Literal] {
				return
			}
		}
		p.next()
	}
}

// closeForm consumes the form's closing paren. Leftover tokens before the
// closer are an error and get skipped. Returns the form's end position.
func (p *parser) closeForm(open Token, what string) Position {
	t := p.peek()
	switch t.Kind {
	case TokenRParen:
		p.next()
		return t.End
	case TokenEOF:
		p.errorf(open.Pos, "unclosed %s form", what)
		return p.last.End
	default:
		p.expectedf(fmt.Sprintf("')' to close %s form", what), t)
		return p.skipToMatchingClose()
	}
}

func (p *parser) parseDocument() *WireDocument {
	open := p.peek()
	if open.Kind != TokenLParen {
		p.errorf(open.Pos, "expected (wire ...) at top of document, got %s", describeToken(open))
		return nil
	}
	head := p.peekAhead(1)
	if head.Kind != TokenSymbol || head.Literal != "wire" {
		p.expectedf("wire form", head)
		return nil
	}
	p.next()
	p.next()

	doc := &WireDocument{
		Meta:       make(map[string]PropValue),
		Components: make(map[string]*ComponentDef),
		Layouts:    make(map[string]*LayoutNode),
		Loc:        SourceLocation{Start: open.Pos},
	}

	for {
		t := p.peek()
		if t.Kind == TokenRParen || t.Kind == TokenEOF {
			break
		}
		p.parseTopForm(doc)
	}

	doc.Loc.End = p.closeForm(open, "wire")

	if t := p.peek(); t.Kind != TokenEOF {
		p.errorf(t.Pos, "unexpected content after wire form: %s", describeToken(t))
	}
	return doc
}

func (p *parser) parseTopForm(doc *WireDocument) {
	t := p.peek()
	if t.Kind != TokenLParen {
		p.errorf(t.Pos, "unexpected %s at document level", describeToken(t))
		p.next()
		p.resyncToNextTopForm()
		return
	}
	open := p.next()

	head := p.peek()
	if head.Kind != TokenSymbol {
		p.expectedf("form name", head)
		p.skipToMatchingClose()
		return
	}

	switch head.Literal {
	case "include":
		p.parseInclude(doc, open)
	case "meta":
		p.parseMeta(doc, open)
	case "define":
		p.parseDefine(doc, open)
	case "layout":
		p.parseLayout(doc, open)
	case "screen":
		p.parseScreen(doc, open)
	default:
		p.errorf(head.Pos, "unknown top-level form %q", head.Literal)
		p.skipToMatchingClose()
		p.resyncToNextTopForm()
	}
}

func (p *parser) parseInclude(doc *WireDocument, open Token) {
	p.next() // include

	pathTok := p.peek()
	if pathTok.Kind != TokenString {
		p.expectedf("include path string", pathTok)
		p.skipToMatchingClose()
		return
	}
	p.next()

	end := p.closeForm(open, "include")
	doc.Includes = append(doc.Includes, &IncludeDecl{
		Path: pathTok.Literal,
		Loc:  SourceLocation{Start: open.Pos, End: end},
	})
}

func (p *parser) parseMeta(doc *WireDocument, open Token) {
	p.next() // meta

	for {
		t := p.peek()
		if t.Kind == TokenRParen || t.Kind == TokenEOF {
			break
		}
		if t.Kind != TokenKeyword {
			p.expectedf(":key in meta form", t)
			p.next()
			continue
		}
		p.next()
		if v, ok := p.parseScalarValue(false); ok {
			doc.Meta[t.Literal] = v
		} else {
			doc.Meta[t.Literal] = PropValue{Kind: PropBool, Bool: true}
		}
	}
	p.closeForm(open, "meta")
}

func (p *parser) parseDefine(doc *WireDocument, open Token) {
	p.next() // define

	nameTok := p.peek()
	if nameTok.Kind != TokenSymbol {
		p.expectedf("component name", nameTok)
		p.skipToMatchingClose()
		return
	}
	p.next()

	def := &ComponentDef{Name: nameTok.Literal}
	for {
		t := p.peek()
		if t.Kind == TokenRParen || t.Kind == TokenEOF {
			break
		}
		switch t.Kind {
		case TokenParamRef:
			if def.Body != nil {
				p.errorf(t.Pos, "param $%s must be declared before the component body", t.Literal)
				p.next()
				continue
			}
			p.next()
			def.Params = append(def.Params, t.Literal)
		case TokenLParen:
			child := p.parseChild()
			if child == nil {
				continue
			}
			if def.Body != nil {
				p.errorf(t.Pos, "component %q has more than one body element", def.Name)
				continue
			}
			def.Body = asRootElement(child)
		default:
			p.errorf(t.Pos, "unexpected %s in define form", describeToken(t))
			p.next()
		}
	}
	if def.Body == nil {
		p.errorf(open.Pos, "component %q has no body element", def.Name)
	}

	def.Loc = SourceLocation{Start: open.Pos, End: p.closeForm(open, "define")}
	doc.Components[def.Name] = def
}

func (p *parser) parseLayout(doc *WireDocument, open Token) {
	p.next() // layout

	nameTok := p.peek()
	if nameTok.Kind != TokenSymbol {
		p.expectedf("layout name", nameTok)
		p.skipToMatchingClose()
		return
	}
	p.next()

	lay := &LayoutNode{Name: nameTok.Literal}
	for {
		t := p.peek()
		if t.Kind == TokenRParen || t.Kind == TokenEOF {
			break
		}
		if t.Kind != TokenLParen {
			p.errorf(t.Pos, "unexpected %s in layout form", describeToken(t))
			p.next()
			continue
		}
		child := p.parseChild()
		if child == nil {
			continue
		}
		if lay.Body != nil {
			p.errorf(t.Pos, "layout %q has more than one body element", lay.Name)
			continue
		}
		lay.Body = asRootElement(child)
	}
	if lay.Body == nil {
		p.errorf(open.Pos, "layout %q has no body element", lay.Name)
	}

	lay.Loc = SourceLocation{Start: open.Pos, End: p.closeForm(open, "layout")}
	doc.Layouts[lay.Name] = lay
}

var validViewports = map[string]bool{
	"mobile":  true,
	"tablet":  true,
	"desktop": true,
}

func (p *parser) parseScreen(doc *WireDocument, open Token) {
	p.next() // screen

	idTok := p.peek()
	if idTok.Kind != TokenSymbol {
		p.expectedf("screen id", idTok)
		p.skipToMatchingClose()
		return
	}
	p.next()

	scr := &ScreenNode{ID: idTok.Literal}
	if t := p.peek(); t.Kind == TokenString {
		p.next()
		scr.Name = t.Literal
	}

	for {
		t := p.peek()
		if t.Kind == TokenRParen || t.Kind == TokenEOF {
			break
		}
		switch t.Kind {
		case TokenKeyword:
			p.next()
			p.parseScreenProp(scr, t)
		case TokenLParen:
			head := p.peekAhead(1)
			if head.Kind == TokenSymbol && overlayForms[head.Literal] {
				if ov := p.parseOverlay(); ov != nil {
					scr.Overlays = append(scr.Overlays, ov)
				}
				continue
			}
			child := p.parseChild()
			if child == nil {
				continue
			}
			if scr.Root != nil {
				p.errorf(t.Pos, "screen %q has more than one root element", scr.ID)
				continue
			}
			scr.Root = asRootElement(child)
		default:
			p.errorf(t.Pos, "unexpected %s in screen form", describeToken(t))
			p.next()
		}
	}

	scr.Loc = SourceLocation{Start: open.Pos, End: p.closeForm(open, "screen")}
	doc.Screens = append(doc.Screens, scr)
}

func (p *parser) parseScreenProp(scr *ScreenNode, key Token) {
	switch key.Literal {
	case "viewport":
		v, ok := p.parseScalarValue(false)
		if !ok || v.Kind != PropString {
			p.errorf(key.Pos, "missing viewport name after :viewport")
			return
		}
		if !validViewports[v.Str] {
			p.errorf(key.Pos, "invalid viewport %q (expected mobile, tablet, or desktop)", v.Str)
		}
		scr.Viewport = v.Str
	case "layout":
		v, ok := p.parseScalarValue(false)
		if !ok || v.Kind != PropString {
			p.errorf(key.Pos, "missing layout name after :layout")
			return
		}
		scr.Layout = v.Str
	default:
		p.errorf(key.Pos, "unknown screen property :%s", key.Literal)
		p.parseScalarValue(false) // swallow its value if one follows
	}
}

func (p *parser) parseOverlay() *OverlayNode {
	open := p.next() // (
	kindTok := p.next()

	idTok := p.peek()
	if idTok.Kind != TokenSymbol {
		p.expectedf(kindTok.Literal+" id", idTok)
		p.skipToMatchingClose()
		return nil
	}
	p.next()

	ov := &OverlayNode{ID: idTok.Literal, Kind: kindTok.Literal}
	if t := p.peek(); t.Kind == TokenString {
		p.next()
		ov.Title = t.Literal
	}

	for {
		t := p.peek()
		if t.Kind == TokenRParen || t.Kind == TokenEOF {
			break
		}
		if t.Kind != TokenLParen {
			p.errorf(t.Pos, "unexpected %s in %s form", describeToken(t), ov.Kind)
			p.next()
			continue
		}
		child := p.parseChild()
		if child == nil {
			continue
		}
		if ov.Root != nil {
			p.errorf(t.Pos, "%s %q has more than one root element", ov.Kind, ov.ID)
			continue
		}
		ov.Root = asRootElement(child)
	}

	ov.Loc = SourceLocation{Start: open.Pos, End: p.closeForm(open, ov.Kind)}
	return ov
}

// asRootElement makes any child usable as a screen, component, layout, or
// overlay root. A repeat at root level gets wrapped in a synthetic
// repeat-container so roots are uniformly plain elements.
func asRootElement(child ChildNode) *ElementNode {
	switch n := child.(type) {
	case *ElementNode:
		return n
	case *RepeatNode:
		return &ElementNode{
			Type:     "repeat-container",
			Props:    make(map[string]PropValue),
			Children: []ChildNode{n},
			Loc:      n.Loc,
		}
	}
	return nil
}

// parseChild parses one child form, dispatching between repeat and element.
// Returns nil when the form was malformed beyond use; the error has already
// been recorded.
func (p *parser) parseChild() ChildNode {
	open := p.next() // (

	head := p.peek()
	if head.Kind != TokenSymbol {
		p.expectedf("element type", head)
		p.skipToMatchingClose()
		return nil
	}
	if head.Literal == "repeat" {
		return p.parseRepeat(open)
	}
	return p.parseElement(open, head)
}

// parseElement parses a builtin element per its schema, or a component call
// generically. Unknown names parse as component calls too: the name may be
// defined in a file that has not been included yet.
func (p *parser) parseElement(open, head Token) *ElementNode {
	p.next() // element type
	typ := head.Literal
	spec, builtin := LookupElement(typ)

	el := &ElementNode{
		Type:        typ,
		Props:       make(map[string]PropValue),
		IsComponent: !builtin,
	}

	// Optional inline content: a string literal or a param ref.
	switch t := p.peek(); t.Kind {
	case TokenString:
		p.next()
		if builtin && !spec.ContentAllowed {
			p.errorf(t.Pos, "element %q does not take content", typ)
		} else {
			v := StringValue(t.Literal)
			el.Content = &v
		}
	case TokenParamRef:
		p.next()
		if builtin && !spec.ContentAllowed {
			p.errorf(t.Pos, "element %q does not take content", typ)
		} else {
			v := ParamValue(t.Literal)
			el.Content = &v
		}
	}

	var firstChild Token
	for {
		t := p.peek()
		if t.Kind == TokenRParen || t.Kind == TokenEOF {
			break
		}
		switch t.Kind {
		case TokenKeyword:
			p.next()
			p.parseProp(el, spec, builtin, t)
		case TokenLParen:
			if firstChild.Kind == TokenEOF && len(el.Children) == 0 {
				firstChild = t
			}
			if child := p.parseChild(); child != nil {
				el.Children = append(el.Children, child)
			}
		default:
			p.errorf(t.Pos, "unexpected %s in %q form", describeToken(t), typ)
			p.next()
		}
	}

	if builtin && !spec.ChildrenAllowed && len(el.Children) > 0 {
		p.errorf(firstChild.Pos, "element %q does not take children", typ)
	}

	el.Loc = SourceLocation{Start: open.Pos, End: p.closeForm(open, typ)}
	return el
}

// parseProp parses one :name value pair or bare flag. The navigation target
// grammar applies to :to and to any prop the schema marks as navigation.
func (p *parser) parseProp(el *ElementNode, spec ElementSpec, builtin bool, key Token) {
	kind := KindAny
	if builtin {
		if ps, ok := spec.Props[key.Literal]; ok {
			kind = ps.Kind
		}
	}
	if key.Literal == "to" {
		kind = KindNavigation
	}
	nav := kind == KindNavigation

	val, ok := p.parseScalarValue(nav)
	switch {
	case !ok:
		// Bare flag. Raw stays empty to mark that no value token was written.
		el.Props[key.Literal] = PropValue{Kind: PropBool, Bool: true}
	case nav:
		// Already classified by the navigation grammar; coercion would
		// reclassify an unknown keyword passthrough as a screen ref.
		el.Props[key.Literal] = val
	default:
		el.Props[key.Literal] = coerceProp(val, kind)
	}
}

// parseScalarValue reads one atom value. Returns false without consuming when
// the next token cannot be a value (a keyword starting the next prop, a child
// form, or the form's end); the caller treats that as a bare flag.
//
// Under the navigation grammar (nav=true) a keyword is consumed as a value:
// close/back/submit become action targets, anything else passes through as a
// plain string. Strings sort into URL targets and screen-id targets.
func (p *parser) parseScalarValue(nav bool) (PropValue, bool) {
	t := p.peek()
	switch t.Kind {
	case TokenString:
		p.next()
		v := PropValue{Kind: PropString, Str: t.Literal, Raw: t.Literal}
		if nav {
			v = coerceNavigation(v)
		}
		return v, true
	case TokenNumber:
		p.next()
		n, _ := strconv.ParseFloat(t.Literal, 64)
		return PropValue{Kind: PropNumber, Number: n, Raw: t.Literal}, true
	case TokenSymbol:
		p.next()
		if nav {
			return PropValue{Kind: PropScreenRef, Str: t.Literal, Raw: t.Literal}, true
		}
		switch t.Literal {
		case "true":
			return PropValue{Kind: PropBool, Bool: true, Raw: t.Literal}, true
		case "false":
			return PropValue{Kind: PropBool, Bool: false, Raw: t.Literal}, true
		}
		return PropValue{Kind: PropString, Str: t.Literal, Raw: t.Literal}, true
	case TokenParamRef:
		p.next()
		return ParamValue(t.Literal), true
	case TokenHashRef:
		p.next()
		return PropValue{Kind: PropOverlayRef, Str: t.Literal, Raw: "#" + t.Literal}, true
	case TokenKeyword:
		if !nav {
			return PropValue{}, false
		}
		p.next()
		if navActions[t.Literal] {
			return PropValue{Kind: PropActionRef, Str: t.Literal, Raw: ":" + t.Literal}, true
		}
		return PropValue{Kind: PropString, Str: t.Literal, Raw: ":" + t.Literal}, true
	}
	return PropValue{}, false
}

func (p *parser) parseRepeat(open Token) ChildNode {
	p.next() // repeat

	rep := &RepeatNode{Count: 1}
	countSeen := false
	for {
		t := p.peek()
		if t.Kind == TokenRParen || t.Kind == TokenEOF {
			break
		}
		switch t.Kind {
		case TokenKeyword:
			p.next()
			switch t.Literal {
			case "count":
				if p.parseRepeatCount(rep) {
					countSeen = true
				}
			case "as":
				v := p.peek()
				if v.Kind != TokenSymbol {
					p.expectedf("loop variable name after :as", v)
					continue
				}
				p.next()
				rep.Var = v.Literal
			default:
				p.errorf(t.Pos, "unknown repeat property :%s", t.Literal)
				p.parseScalarValue(false)
			}
		case TokenLParen:
			child := p.parseChild()
			if child == nil {
				continue
			}
			el, isElement := child.(*ElementNode)
			if !isElement {
				p.errorf(t.Pos, "repeat body must be a single element")
				continue
			}
			if rep.Body != nil {
				p.errorf(t.Pos, "repeat form has more than one body element")
				continue
			}
			rep.Body = el
		default:
			p.errorf(t.Pos, "unexpected %s in repeat form", describeToken(t))
			p.next()
		}
	}

	if !countSeen && rep.CountParam == "" {
		p.errorf(open.Pos, "repeat form requires :count")
	}
	end := p.closeForm(open, "repeat")
	if rep.Body == nil {
		p.errorf(open.Pos, "repeat form requires a body element")
		return nil
	}
	rep.Loc = SourceLocation{Start: open.Pos, End: end}
	return rep
}

// parseRepeatCount accepts a non-negative integer literal or a param ref.
func (p *parser) parseRepeatCount(rep *RepeatNode) bool {
	t := p.peek()
	switch t.Kind {
	case TokenNumber:
		p.next()
		n, _ := strconv.ParseFloat(t.Literal, 64)
		if n < 0 || n != math.Trunc(n) {
			p.errorf(t.Pos, "repeat :count must be a non-negative integer, got %s", t.Literal)
			return false
		}
		rep.Count = int(n)
		return true
	case TokenParamRef:
		p.next()
		rep.CountParam = t.Literal
		return true
	default:
		p.expectedf("count value after :count", t)
		return false
	}
}
