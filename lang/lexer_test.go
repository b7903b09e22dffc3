package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestLexer_SimpleAssignAndExprStatement(t *testing.T) {
	toks, err := NewLexer("x = 1\nprint(int(x))\n").Tokenize()
	require.NoError(t, err)

	assert.Equal(t, []TokenType{
		TokenName, TokenAssign, TokenNumber, TokenNewline,
		TokenName, TokenLParen, TokenName, TokenLParen, TokenName, TokenRParen, TokenRParen, TokenNewline,
		TokenEOF,
	}, tokenTypes(toks))
}

func TestLexer_IndentDedent(t *testing.T) {
	src := "if x:\n    y = 1\n    z = 2\nw = 3\n"
	toks, err := NewLexer(src).Tokenize()
	require.NoError(t, err)

	assert.Equal(t, []TokenType{
		TokenIf, TokenName, TokenColon, TokenNewline,
		TokenIndent,
		TokenName, TokenAssign, TokenNumber, TokenNewline,
		TokenName, TokenAssign, TokenNumber, TokenNewline,
		TokenDedent,
		TokenName, TokenAssign, TokenNumber, TokenNewline,
		TokenEOF,
	}, tokenTypes(toks))
}

func TestLexer_NestedIndentMultipleDedents(t *testing.T) {
	src := "while x:\n    if y:\n        z = 1\nw = 2\n"
	toks, err := NewLexer(src).Tokenize()
	require.NoError(t, err)

	types := tokenTypes(toks)
	dedents := 0
	for _, ty := range types {
		if ty == TokenDedent {
			dedents++
		}
	}
	assert.Equal(t, 2, dedents, "expected two dedents to unwind both nested blocks: %v", types)
}

func TestLexer_BlankAndCommentLinesIgnoredForIndentation(t *testing.T) {
	src := "if x:\n    y = 1\n\n    ; a comment\n    z = 2\nw = 3\n"
	toks, err := NewLexer(src).Tokenize()
	require.NoError(t, err)

	types := tokenTypes(toks)
	indents := 0
	for _, ty := range types {
		if ty == TokenIndent {
			indents++
		}
	}
	assert.Equal(t, 1, indents, "blank/comment lines must not trigger spurious INDENT: %v", types)
}

func TestLexer_InconsistentIndentationErrors(t *testing.T) {
	src := "if x:\n    y = 1\n  z = 2\n"
	_, err := NewLexer(src).Tokenize()
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestLexer_TabsExpandToWidthEight(t *testing.T) {
	src := "if x:\n\ty = 1\n"
	toks, err := NewLexer(src).Tokenize()
	require.NoError(t, err)
	assert.Contains(t, tokenTypes(toks), TokenIndent)
}

func TestLexer_Keywords(t *testing.T) {
	toks, err := NewLexer("if elif else while def return break continue and or not True False\n").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []TokenType{
		TokenIf, TokenElif, TokenElse, TokenWhile, TokenDef, TokenReturn,
		TokenBreak, TokenContinue, TokenAnd, TokenOr, TokenNot, TokenTrue, TokenFalse,
		TokenNewline, TokenEOF,
	}, tokenTypes(toks))
}

func TestLexer_CompoundOperators(t *testing.T) {
	toks, err := NewLexer("a += 1\na -= 1\na *= 1\na //= 1\na %= 1\n").Tokenize()
	require.NoError(t, err)

	var ops []TokenType
	for _, tk := range toks {
		switch tk.Type {
		case TokenPlusEq, TokenMinusEq, TokenStarEq, TokenDSlashEq, TokenPercentEq:
			ops = append(ops, tk.Type)
		}
	}
	assert.Equal(t, []TokenType{TokenPlusEq, TokenMinusEq, TokenStarEq, TokenDSlashEq, TokenPercentEq}, ops)
}

func TestLexer_ComparisonOperators(t *testing.T) {
	toks, err := NewLexer("a == b != c < d > e <= f >= g\n").Tokenize()
	require.NoError(t, err)

	var ops []TokenType
	for _, tk := range toks {
		switch tk.Type {
		case TokenEq, TokenNotEq, TokenLess, TokenGreater, TokenLessEq, TokenGreaterEq:
			ops = append(ops, tk.Type)
		}
	}
	assert.Equal(t, []TokenType{TokenEq, TokenNotEq, TokenLess, TokenGreater, TokenLessEq, TokenGreaterEq}, ops)
}

func TestLexer_ParenthesesSuppressNewlines(t *testing.T) {
	toks, err := NewLexer("print(int(\n    x\n))\n").Tokenize()
	require.NoError(t, err)

	newlines := 0
	for _, tk := range toks {
		if tk.Type == TokenNewline {
			newlines++
		}
	}
	assert.Equal(t, 1, newlines, "newlines inside parens must be swallowed: %v", tokenTypes(toks))
}

func TestLexer_Walrus(t *testing.T) {
	toks, err := NewLexer("print(int((n := 5)))\n").Tokenize()
	require.NoError(t, err)
	assert.Contains(t, tokenTypes(toks), TokenWalrus)
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	_, err := NewLexer("x = 1 & 2\n").Tokenize()
	require.Error(t, err)
}
