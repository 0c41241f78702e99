package expr

import (
	"strings"
)

// TokenType identifies a filter token.
type TokenType int

// Token types.
const (
	TokenEOF TokenType = iota
	TokenIllegal
	TokenIdent
	TokenNumber
	TokenString
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenAnd
	TokenOr
	TokenNot
	TokenTrue
	TokenFalse
	TokenNull
	TokenDot
	TokenComma
	TokenMinus
	TokenLParen
	TokenRParen
)

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"true":  TokenTrue,
	"false": TokenFalse,
	"null":  TokenNull,
}

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Type    TokenType
	Literal string
	Offset  int
}

// Lexer tokenizes filter input such as `Id = 5 AND Name <> 'x'`.
// Go spellings (==, !=, &&, ||, !) are accepted as synonyms.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}

	start := l.pos
	two := func(t TokenType, lit string) Token {
		l.readChar()
		l.readChar()
		return Token{Type: t, Literal: lit, Offset: start}
	}
	one := func(t TokenType) Token {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: t, Literal: lit, Offset: start}
	}

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Offset: start}
	case '=':
		if l.peekChar() == '=' {
			return two(TokenEq, "==")
		}
		return one(TokenEq)
	case '<':
		switch l.peekChar() {
		case '=':
			return two(TokenLe, "<=")
		case '>':
			return two(TokenNe, "<>")
		}
		return one(TokenLt)
	case '>':
		if l.peekChar() == '=' {
			return two(TokenGe, ">=")
		}
		return one(TokenGt)
	case '!':
		if l.peekChar() == '=' {
			return two(TokenNe, "!=")
		}
		return one(TokenNot)
	case '&':
		if l.peekChar() == '&' {
			return two(TokenAnd, "&&")
		}
	case '|':
		if l.peekChar() == '|' {
			return two(TokenOr, "||")
		}
	case '.':
		return one(TokenDot)
	case ',':
		return one(TokenComma)
	case '-':
		return one(TokenMinus)
	case '(':
		return one(TokenLParen)
	case ')':
		return one(TokenRParen)
	case '\'':
		return Token{Type: TokenString, Literal: l.readString(), Offset: start}
	case '"':
		return Token{Type: TokenIdent, Literal: l.readQuotedIdentifier(), Offset: start}
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			lit := l.readIdentifier()
			if t, ok := keywords[strings.ToLower(lit)]; ok {
				return Token{Type: t, Literal: lit, Offset: start}
			}
			return Token{Type: TokenIdent, Literal: lit, Offset: start}
		case isDigit(l.ch):
			return Token{Type: TokenNumber, Literal: l.readNumber(), Offset: start}
		}
	}
	return one(TokenIllegal)
}

// readString reads a single-quoted string literal.
// Handles doubled single quotes as escape: 'it''s' -> it's
func (l *Lexer) readString() string {
	l.readChar() // skip opening quote
	var result strings.Builder
	for l.ch != 0 {
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				result.WriteByte('\'')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			break
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return result.String()
}

// readQuotedIdentifier reads a double-quoted identifier.
func (l *Lexer) readQuotedIdentifier() string {
	l.readChar() // skip opening quote
	start := l.pos
	for l.ch != 0 && l.ch != '"' {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	if l.ch == '"' {
		l.readChar()
	}
	return lit
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads an integer or decimal literal with optional exponent.
func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
