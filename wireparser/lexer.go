package wireparser

import (
	"fmt"
	"strings"
)

// Tokenize converts source text into a flat, fully-spanned token stream ending
// in an EOF token. Comments are stripped. It fails fast with a *LexError on
// the first invalid construct; unterminated strings and escapes report the
// opening quote's position.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	return l.run()
}

// tokenizeRelaxed is the formatter's tokenizer: it never fails. Comments are
// emitted as tokens, unterminated strings are closed at end of input, stray
// characters are dropped.
func tokenizeRelaxed(src string) []Token {
	l := &lexer{src: src, line: 1, col: 1, relaxed: true}
	toks, _ := l.run()
	return toks
}

type lexer struct {
	src     string
	pos     int // current byte offset
	line    int // current line (1-based)
	col     int // current column (1-based)
	relaxed bool
}

func (l *lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) errorf(pos Position, format string, args ...any) error {
	return &LexError{ParseError{Message: fmt.Sprintf(format, args...), Pos: pos}}
}

func (l *lexer) token(kind TokenKind, literal string, start Position) Token {
	return Token{Kind: kind, Literal: literal, Pos: start, End: l.currentPos()}
}

func (l *lexer) run() ([]Token, error) {
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.atEnd() {
			pos := l.currentPos()
			tokens = append(tokens, Token{Kind: TokenEOF, Pos: pos, End: pos})
			return tokens, nil
		}

		pos := l.currentPos()
		ch := l.peek()

		switch {
		case ch == '(':
			l.advance()
			tokens = append(tokens, l.token(TokenLParen, "(", pos))
		case ch == ')':
			l.advance()
			tokens = append(tokens, l.token(TokenRParen, ")", pos))
		case ch == '"':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case ch == ';':
			if l.relaxed {
				tokens = append(tokens, l.scanComment())
			} else {
				for !l.atEnd() && l.peek() != '\n' {
					l.advance()
				}
			}
		case ch == ':':
			tok, err := l.scanSigil(TokenKeyword)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case ch == '$':
			tok, err := l.scanSigil(TokenParamRef)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case ch == '#':
			tok, err := l.scanSigil(TokenHashRef)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case ch == '-' && isDigit(l.peekAt(1)):
			tokens = append(tokens, l.scanNumber())
		case isDigit(ch):
			tokens = append(tokens, l.scanNumber())
		case isIdentStart(ch):
			tokens = append(tokens, l.scanSymbol())
		default:
			l.advance()
			if !l.relaxed {
				return nil, l.errorf(pos, "unexpected character %q", ch)
			}
		}
	}
}

func (l *lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// scanComment consumes ';' through end of line, excluding the newline.
// Relaxed mode only; the literal keeps the ';' so the formatter can re-emit
// comments verbatim.
func (l *lexer) scanComment() Token {
	pos := l.currentPos()
	start := l.pos
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
	return l.token(TokenComment, strings.TrimRight(l.src[start:l.pos], " \t"), pos)
}

func (l *lexer) scanSymbol() Token {
	pos := l.currentPos()
	start := l.pos
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	return l.token(TokenSymbol, l.src[start:l.pos], pos)
}

// scanSigil scans :name, $name, or #name. The name must start immediately
// after the sigil; an empty name is an error at the sigil's position.
func (l *lexer) scanSigil(kind TokenKind) (Token, error) {
	pos := l.currentPos()
	sigil := l.advance()
	if !isIdentStart(l.peek()) {
		if l.relaxed {
			return l.token(kind, "", pos), nil
		}
		return Token{}, l.errorf(pos, "expected identifier after %q", sigil)
	}
	start := l.pos
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	return l.token(kind, l.src[start:l.pos], pos), nil
}

func (l *lexer) scanNumber() Token {
	pos := l.currentPos()
	start := l.pos
	if l.peek() == '-' {
		l.advance()
	}
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	// A trailing bare dot is not part of the number; the main loop reports it.
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.token(TokenNumber, l.src[start:l.pos], pos)
}

// scanString scans a double-quoted string literal, which may span multiple
// lines. Escapes: \n \t \r \\ \" , \xNN, \uNNNN, and \u{H..H} with up to six
// hex digits. Unrecognized escapes pass the literal character through. All
// errors are reported at the opening quote.
func (l *lexer) scanString() (Token, error) {
	pos := l.currentPos()
	l.advance() // consume opening "

	var sb strings.Builder
	for {
		if l.atEnd() {
			if l.relaxed {
				return l.token(TokenString, sb.String(), pos), nil
			}
			return Token{}, l.errorf(pos, "unterminated string")
		}
		ch := l.advance()
		if ch == '"' {
			return l.token(TokenString, sb.String(), pos), nil
		}
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		if l.atEnd() {
			if l.relaxed {
				return l.token(TokenString, sb.String(), pos), nil
			}
			return Token{}, l.errorf(pos, "unterminated string escape")
		}
		esc := l.advance()
		switch esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'x':
			if err := l.scanHexEscape(&sb, pos); err != nil {
				return Token{}, err
			}
		case 'u':
			if err := l.scanUnicodeEscape(&sb, pos); err != nil {
				return Token{}, err
			}
		default:
			// Unknown escape: the escaped character passes through unchanged.
			sb.WriteByte(esc)
		}
	}
}

// scanHexEscape handles \xNN with exactly two hex digits.
func (l *lexer) scanHexEscape(sb *strings.Builder, quote Position) error {
	var v rune
	for i := 0; i < 2; i++ {
		d, ok := hexDigit(l.peek())
		if !ok || l.atEnd() {
			if l.relaxed {
				sb.WriteByte('x')
				return nil
			}
			return l.errorf(quote, "invalid \\x escape: expected two hex digits")
		}
		l.advance()
		v = v*16 + d
	}
	sb.WriteRune(v)
	return nil
}

// scanUnicodeEscape handles \uNNNN and \u{H..H} (one to six hex digits, code
// point at most 0x10FFFF).
func (l *lexer) scanUnicodeEscape(sb *strings.Builder, quote Position) error {
	if l.peek() == '{' {
		l.advance()
		var v rune
		digits := 0
		for {
			if l.atEnd() {
				if l.relaxed {
					return nil
				}
				return l.errorf(quote, "unterminated \\u{...} escape")
			}
			if l.peek() == '}' {
				l.advance()
				break
			}
			d, ok := hexDigit(l.peek())
			if !ok || digits >= 6 {
				if l.relaxed {
					return nil
				}
				return l.errorf(quote, "invalid \\u{...} escape: expected one to six hex digits")
			}
			l.advance()
			v = v*16 + d
			digits++
		}
		if digits == 0 || v > 0x10FFFF {
			if l.relaxed {
				return nil
			}
			return l.errorf(quote, "invalid \\u{...} escape: code point out of range")
		}
		sb.WriteRune(v)
		return nil
	}

	var v rune
	for i := 0; i < 4; i++ {
		d, ok := hexDigit(l.peek())
		if !ok || l.atEnd() {
			if l.relaxed {
				sb.WriteByte('u')
				return nil
			}
			return l.errorf(quote, "invalid \\u escape: expected four hex digits")
		}
		l.advance()
		v = v*16 + d
	}
	sb.WriteRune(v)
	return nil
}

func hexDigit(ch byte) (rune, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return rune(ch - '0'), true
	case ch >= 'a' && ch <= 'f':
		return rune(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'F':
		return rune(ch-'A') + 10, true
	}
	return 0, false
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '-'
}
