// Package jslexer tokenizes the ECMAScript subset this bundler's assumed
// parser/codegen boundary needs to support: top-level declarations, ESM
// import/export forms, and the statement/expression shapes the scanner
// classifies for side effects. It follows the token naming and hand-rolled
// scanning style of esbuild's js_lexer package, trimmed to this subset.
package jslexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type T uint8

const (
	TEndOfFile T = iota
	TIdentifier
	TNumericLiteral
	TStringLiteral
	TNoSubstitutionTemplateLiteral
	TTemplateHead
	TTemplateMiddle
	TTemplateTail
	TPunctuation // catch-all; Lexer.Raw() gives the exact text
)

// Lexer is a single-pass scanner over UTF-8 source text.
type Lexer struct {
	Source string
	start  int
	end    int
	pos    int
	Token  T
	Ident  string // decoded text of the current token (identifier name, string value, raw punctuation)
}

func NewLexer(source string) *Lexer {
	l := &Lexer{Source: source}
	l.Next()
	return l
}

func (l *Lexer) Raw() string { return l.Source[l.start:l.end] }

func (l *Lexer) Start() int { return l.start }

func (l *Lexer) isEOF() bool { return l.pos >= len(l.Source) }

func (l *Lexer) current() byte {
	if l.isEOF() {
		return 0
	}
	return l.Source[l.pos]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.isEOF() {
		c := l.current()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.Source) && l.Source[l.pos+1] == '/':
			for !l.isEOF() && l.current() != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.Source) && l.Source[l.pos+1] == '*':
			l.pos += 2
			for !l.isEOF() && !(l.current() == '*' && l.pos+1 < len(l.Source) && l.Source[l.pos+1] == '/') {
				l.pos++
			}
			l.pos += 2
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// Next advances to the following token.
func (l *Lexer) Next() {
	l.skipWhitespaceAndComments()
	l.start = l.pos

	if l.isEOF() {
		l.Token = TEndOfFile
		l.end = l.pos
		return
	}

	c := l.current()
	switch {
	case isIdentStart(rune(c)):
		for !l.isEOF() {
			r, size := utf8.DecodeRuneInString(l.Source[l.pos:])
			if !isIdentPart(r) {
				break
			}
			l.pos += size
		}
		l.end = l.pos
		l.Token = TIdentifier
		l.Ident = l.Source[l.start:l.end]

	case c >= '0' && c <= '9':
		for !l.isEOF() && (isIdentPart(rune(l.current())) || l.current() == '.') {
			l.pos++
		}
		l.end = l.pos
		l.Token = TNumericLiteral
		l.Ident = l.Source[l.start:l.end]

	case c == '"' || c == '\'':
		quote := c
		l.pos++
		var sb strings.Builder
		for !l.isEOF() && l.current() != quote {
			if l.current() == '\\' && l.pos+1 < len(l.Source) {
				sb.WriteByte(l.decodeEscape())
				continue
			}
			sb.WriteByte(l.current())
			l.pos++
		}
		l.pos++ // closing quote
		l.end = l.pos
		l.Token = TStringLiteral
		l.Ident = sb.String()

	case c == '`':
		l.lexTemplatePart(true)

	default:
		l.lexPunctuation()
	}
}

// decodeEscape handles the small set of escapes the bundler's fixtures use.
func (l *Lexer) decodeEscape() byte {
	l.pos++ // backslash
	c := l.current()
	l.pos++
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case '\\':
		return '\\'
	default:
		return c
	}
}

// lexTemplatePart scans from a backtick or a "}" (inside a substitution)
// to the next "${" or closing backtick.
func (l *Lexer) lexTemplatePart(fromBacktick bool) {
	l.pos++ // consume ` or }
	var sb strings.Builder
	for !l.isEOF() {
		c := l.current()
		if c == '`' {
			l.pos++
			l.end = l.pos
			if fromBacktick {
				l.Token = TNoSubstitutionTemplateLiteral
			} else {
				l.Token = TTemplateTail
			}
			l.Ident = sb.String()
			return
		}
		if c == '$' && l.pos+1 < len(l.Source) && l.Source[l.pos+1] == '{' {
			l.pos += 2
			l.end = l.pos
			if fromBacktick {
				l.Token = TTemplateHead
			} else {
				l.Token = TTemplateMiddle
			}
			l.Ident = sb.String()
			return
		}
		if c == '\\' {
			sb.WriteByte(l.decodeEscape())
			continue
		}
		sb.WriteByte(c)
		l.pos++
	}
	l.end = l.pos
	l.Token = TEndOfFile
}

// ResumeTemplate is called by the parser right after consuming an
// expression inside "${ ... }" once it sees the matching "}".
func (l *Lexer) ResumeTemplate() {
	l.pos = l.start // rewind onto the "}" so lexTemplatePart consumes it
	l.lexTemplatePart(false)
}

var punctuationByLength = []string{
	"...", "=>", "===", "!==", "&&", "||", "??", "?.",
	"+=", "-=", "*=", "/=",
	"==", "!=", "<=", ">=",
	"+", "-", "*", "/", "%", "(", ")", "{", "}", "[", "]",
	",", ";", ":", ".", "=", "<", ">", "!", "?", "&", "|", "^", "~",
}

func (l *Lexer) lexPunctuation() {
	rest := l.Source[l.pos:]
	for _, p := range punctuationByLength {
		if strings.HasPrefix(rest, p) {
			l.pos += len(p)
			l.end = l.pos
			l.Token = TPunctuation
			l.Ident = p
			return
		}
	}
	// Unknown byte: consume it as a single-character punctuation token so the
	// parser can report a useful error instead of looping forever.
	_, size := utf8.DecodeRuneInString(rest)
	if size == 0 {
		size = 1
	}
	l.pos += size
	l.end = l.pos
	l.Token = TPunctuation
	l.Ident = l.Source[l.start:l.end]
}

// IsPunct reports whether the current token is the punctuation p.
func (l *Lexer) IsPunct(p string) bool {
	return l.Token == TPunctuation && l.Ident == p
}

// IsKeyword reports whether the current token is the identifier-shaped
// keyword kw (keywords are lexed as identifiers; the parser disambiguates).
func (l *Lexer) IsKeyword(kw string) bool {
	return l.Token == TIdentifier && l.Ident == kw
}

func (l *Lexer) NumericValue() (float64, error) {
	return strconv.ParseFloat(l.Ident, 64)
}

// SyntaxError formats a message the same way esbuild's lexer does: message
// plus byte offset, left for the caller to wrap with the file path.
func (l *Lexer) SyntaxError(format string, args ...interface{}) error {
	return fmt.Errorf("%s at byte offset %d", fmt.Sprintf(format, args...), l.start)
}
