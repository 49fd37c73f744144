package wireparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTokenize(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Tokenize(src)
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	require.Equal(t, TokenEOF, tokens[len(tokens)-1].Kind)
	return tokens
}

func TestTokenizePunctuation(t *testing.T) {
	tokens := mustTokenize(t, "( )")
	expected := []TokenKind{TokenLParen, TokenRParen, TokenEOF}
	require.Len(t, tokens, len(expected))
	for i, tok := range tokens {
		assert.Equal(t, expected[i], tok.Kind, "token %d", i)
	}
}

func TestTokenizeSymbols(t *testing.T) {
	cases := []string{"box", "_private", "Screen123", "a-b-c", "repeat-container"}
	for _, id := range cases {
		tokens := mustTokenize(t, id)
		require.Len(t, tokens, 2, "input: %s", id) // symbol + EOF
		assert.Equal(t, TokenSymbol, tokens[0].Kind, "input: %s", id)
		assert.Equal(t, id, tokens[0].Literal, "input: %s", id)
	}
}

func TestTokenizeSigils(t *testing.T) {
	tests := []struct {
		input   string
		kind    TokenKind
		literal string
	}{
		{":gap", TokenKeyword, "gap"},
		{":max-width", TokenKeyword, "max-width"},
		{"$item", TokenParamRef, "item"},
		{"$user_name", TokenParamRef, "user_name"},
		{"#confirm", TokenHashRef, "confirm"},
	}
	for _, tt := range tests {
		tokens := mustTokenize(t, tt.input)
		require.Len(t, tokens, 2, "input: %s", tt.input)
		assert.Equal(t, tt.kind, tokens[0].Kind, "input: %s", tt.input)
		assert.Equal(t, tt.literal, tokens[0].Literal, "input: %s", tt.input)
	}
}

func TestTokenizeEmptySigilName(t *testing.T) {
	for _, src := range []string{":", "$", "#", ": gap", ":5"} {
		_, err := Tokenize(src)
		require.Error(t, err, "input: %s", src)
		assert.IsType(t, &LexError{}, err, "input: %s", src)
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"say \"hi\""`, `say "hi"`},
		{`"a\\b"`, `a\b`},
		{`"line1\nline2"`, "line1\nline2"},
		{`"tab\there"`, "tab\there"},
		{`"cr\rend"`, "cr\rend"},
		{`"\x41BC"`, "ABC"},
		{`"café"`, "café"},
		{`"A"`, "A"},
		{`"\u{41}"`, "A"},
		{`"\u{1F600}"`, "\U0001F600"},
		{`"\q"`, "q"}, // unknown escape passes the character through
		{"\"multi\nline\"", "multi\nline"},
	}
	for _, tt := range tests {
		tokens := mustTokenize(t, tt.input)
		require.Len(t, tokens, 2, "input: %s", tt.input)
		assert.Equal(t, TokenString, tokens[0].Kind, "input: %s", tt.input)
		assert.Equal(t, tt.literal, tokens[0].Literal, "input: %s", tt.input)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(`  "hello`)
	require.Error(t, err)
	assert.IsType(t, &LexError{}, err)

	// The error points at the opening quote.
	le := err.(*LexError)
	assert.Equal(t, 1, le.Pos.Line)
	assert.Equal(t, 3, le.Pos.Column)
}

func TestTokenizeBadEscapes(t *testing.T) {
	cases := []string{
		`"\x4"`,        // one hex digit
		`"\xzz"`,       // no hex digits
		`"\u12"`,       // too few digits
		`"\u{}"`,       // empty braces
		`"\u{110000}"`, // beyond max code point
		`"\u{12345678}"`,
		`"abc\`, // escape cut off at end of input
	}
	for _, src := range cases {
		_, err := Tokenize(src)
		require.Error(t, err, "input: %s", src)
		assert.IsType(t, &LexError{}, err, "input: %s", src)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	cases := []string{"0", "42", "-42", "3.14", "-3.14", "0.5", "100.25"}
	for _, src := range cases {
		tokens := mustTokenize(t, src)
		require.Len(t, tokens, 2, "input: %s", src)
		assert.Equal(t, TokenNumber, tokens[0].Kind, "input: %s", src)
		assert.Equal(t, src, tokens[0].Literal, "input: %s", src)
	}
}

func TestTokenizeBareDot(t *testing.T) {
	// A dot without digits on both sides is not part of a number.
	for _, src := range []string{".5", "5.", "(box :gap 5.)"} {
		_, err := Tokenize(src)
		require.Error(t, err, "input: %s", src)
		assert.IsType(t, &LexError{}, err, "input: %s", src)
	}
}

func TestTokenizeLoneMinus(t *testing.T) {
	_, err := Tokenize("-")
	require.Error(t, err)
	assert.IsType(t, &LexError{}, err)
}

func TestTokenizeNumberThenSymbol(t *testing.T) {
	tokens := mustTokenize(t, "5mm")
	require.Len(t, tokens, 3) // 5, mm, EOF
	assert.Equal(t, TokenNumber, tokens[0].Kind)
	assert.Equal(t, "5", tokens[0].Literal)
	assert.Equal(t, TokenSymbol, tokens[1].Kind)
	assert.Equal(t, "mm", tokens[1].Literal)
}

func TestTokenizeComments(t *testing.T) {
	tokens := mustTokenize(t, "box ; the rest is ignored ( ) \"\nrow")
	require.Len(t, tokens, 3) // box, row, EOF
	assert.Equal(t, "box", tokens[0].Literal)
	assert.Equal(t, "row", tokens[1].Literal)
}

func TestTokenizePositions(t *testing.T) {
	tokens := mustTokenize(t, "ab\ncd ef")
	require.Len(t, tokens, 4)

	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, tokens[0].Pos)
	assert.Equal(t, Position{Line: 1, Column: 3, Offset: 2}, tokens[0].End)
	assert.Equal(t, Position{Line: 2, Column: 1, Offset: 3}, tokens[1].Pos)
	assert.Equal(t, Position{Line: 2, Column: 4, Offset: 6}, tokens[2].Pos)
	assert.Equal(t, Position{Line: 2, Column: 6, Offset: 8}, tokens[2].End)
}

func TestTokenizeEmpty(t *testing.T) {
	tokens := mustTokenize(t, "")
	require.Len(t, tokens, 1)
	assert.Equal(t, TokenEOF, tokens[0].Kind)
}

func TestTokenizeInvalidChar(t *testing.T) {
	for _, src := range []string{"@", "box & row", "^"} {
		_, err := Tokenize(src)
		require.Error(t, err, "input: %s", src)
		assert.IsType(t, &LexError{}, err, "input: %s", src)
	}
}

func TestTokenizeFullForm(t *testing.T) {
	tokens := mustTokenize(t, `(button "Save" :to #confirm :count 3 $label)`)
	expected := []TokenKind{
		TokenLParen, TokenSymbol, TokenString,
		TokenKeyword, TokenHashRef,
		TokenKeyword, TokenNumber,
		TokenParamRef, TokenRParen, TokenEOF,
	}
	require.Len(t, tokens, len(expected))
	for i, tok := range tokens {
		assert.Equal(t, expected[i], tok.Kind, "token %d: %s", i, tok.Literal)
	}
	assert.Equal(t, "button", tokens[1].Literal)
	assert.Equal(t, "Save", tokens[2].Literal)
	assert.Equal(t, "to", tokens[3].Literal)
	assert.Equal(t, "confirm", tokens[4].Literal)
	assert.Equal(t, "3", tokens[6].Literal)
	assert.Equal(t, "label", tokens[7].Literal)
}

func TestTokenizeRelaxedKeepsComments(t *testing.T) {
	tokens := tokenizeRelaxed("(box ; half-done\n")
	require.Len(t, tokens, 4) // (, box, comment, EOF
	assert.Equal(t, TokenLParen, tokens[0].Kind)
	assert.Equal(t, TokenSymbol, tokens[1].Kind)
	assert.Equal(t, TokenComment, tokens[2].Kind)
	assert.Equal(t, "; half-done", tokens[2].Literal)
}

func TestTokenizeRelaxedNeverFails(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenKind
	}{
		{`"unterminated`, []TokenKind{TokenString, TokenEOF}},
		{"@ box", []TokenKind{TokenSymbol, TokenEOF}},
		{".5", []TokenKind{TokenNumber, TokenEOF}},
		{":", []TokenKind{TokenKeyword, TokenEOF}},
	}
	for _, tt := range tests {
		tokens := tokenizeRelaxed(tt.input)
		require.Len(t, tokens, len(tt.want), "input: %s", tt.input)
		for i, tok := range tokens {
			assert.Equal(t, tt.want[i], tok.Kind, "input: %s token %d", tt.input, i)
		}
	}
}

func TestTokenizeRelaxedClosesUnterminatedString(t *testing.T) {
	tokens := tokenizeRelaxed(`(text "abc`)
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenString, tokens[2].Kind)
	assert.Equal(t, "abc", tokens[2].Literal)
}
