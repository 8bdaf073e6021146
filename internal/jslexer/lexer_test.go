package jslexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, source string) []string {
	t.Helper()
	l := NewLexer(source)
	var out []string
	for l.Token != TEndOfFile {
		out = append(out, l.Raw())
		l.Next()
	}
	return out
}

func TestIdentifiersAndKeywords(t *testing.T) {
	l := NewLexer("import foo from")
	require.True(t, l.IsKeyword("import"))
	l.Next()
	require.Equal(t, TIdentifier, l.Token)
	require.Equal(t, "foo", l.Ident)
	l.Next()
	require.True(t, l.IsKeyword("from"))
}

func TestNumericLiteral(t *testing.T) {
	l := NewLexer("42 3.14")
	require.Equal(t, TNumericLiteral, l.Token)
	v, err := l.NumericValue()
	require.NoError(t, err)
	require.Equal(t, 42.0, v)
	l.Next()
	v, err = l.NumericValue()
	require.NoError(t, err)
	require.Equal(t, 3.14, v)
}

func TestStringLiteralEscapes(t *testing.T) {
	l := NewLexer(`"a\nb\tc\\d"`)
	require.Equal(t, TStringLiteral, l.Token)
	require.Equal(t, "a\nb\tc\\d", l.Ident)
}

func TestStringLiteralSingleQuote(t *testing.T) {
	l := NewLexer(`'hello'`)
	require.Equal(t, TStringLiteral, l.Token)
	require.Equal(t, "hello", l.Ident)
}

func TestNoSubstitutionTemplate(t *testing.T) {
	l := NewLexer("`plain text`")
	require.Equal(t, TNoSubstitutionTemplateLiteral, l.Token)
	require.Equal(t, "plain text", l.Ident)
}

func TestTemplateWithSubstitution(t *testing.T) {
	l := NewLexer("`a${x}b`")
	require.Equal(t, TTemplateHead, l.Token)
	require.Equal(t, "a", l.Ident)
	l.Next()
	require.Equal(t, TIdentifier, l.Token)
	require.Equal(t, "x", l.Ident)
	l.Next()
	require.True(t, l.IsPunct("}"))
	l.ResumeTemplate()
	require.Equal(t, TTemplateTail, l.Token)
	require.Equal(t, "b", l.Ident)
}

func TestPunctuationLongestMatchFirst(t *testing.T) {
	toks := tokens(t, "=== == = => =")
	require.Equal(t, []string{"===", "==", "=", "=>", "="}, toks)
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	toks := tokens(t, "a // comment\nb /* block\ncomment */ c")
	require.Equal(t, []string{"a", "b", "c"}, toks)
}

func TestIsPunctAndIsKeywordDontCrossMatch(t *testing.T) {
	l := NewLexer("x")
	require.False(t, l.IsPunct("x"))
	require.False(t, l.IsKeyword("("))
}

func TestSyntaxErrorIncludesOffset(t *testing.T) {
	l := NewLexer("   bad")
	err := l.SyntaxError("unexpected %q", "bad")
	require.Contains(t, err.Error(), "byte offset 3")
}
