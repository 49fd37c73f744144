package wireparser

// TokenKind identifies the type of a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenLParen   // (
	TokenRParen   // )
	TokenSymbol   // [A-Za-z_][A-Za-z0-9_-]*
	TokenKeyword  // :name (Literal holds the name without the sigil)
	TokenString   // "..." with escape processing
	TokenNumber   // -?[0-9]+(.[0-9]+)?
	TokenParamRef // $name (Literal holds the name)
	TokenHashRef  // #name (Literal holds the name)
	TokenComment  // ; to end of line, relaxed tokenization only
)

var tokenNames = map[TokenKind]string{
	TokenEOF:      "EOF",
	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenSymbol:   "symbol",
	TokenKeyword:  "keyword",
	TokenString:   "string",
	TokenNumber:   "number",
	TokenParamRef: "param ref",
	TokenHashRef:  "hash ref",
	TokenComment:  "comment",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is a single lexical unit produced by Tokenize. Pos is the position of
// the first character; End is the position one past the last character, so the
// token occupies the half-open byte range [Pos.Offset, End.Offset).
type Token struct {
	Kind    TokenKind
	Literal string // decoded content for strings, name for sigil tokens, raw text otherwise
	Pos     Position
	End     Position
}

// topLevelForms is the set of form names recognized directly under (wire ...).
// The parser resynchronizes on these after a malformed top-level form.
var topLevelForms = map[string]bool{
	"include": true,
	"meta":    true,
	"define":  true,
	"layout":  true,
	"screen":  true,
}

// overlayForms is the set of element names that introduce a screen overlay.
var overlayForms = map[string]bool{
	"modal":   true,
	"drawer":  true,
	"popover": true,
}
