// Package scanner turns Gekko source text into a token stream. It follows
// the teacher lexer's shape -- a struct carrying cursor state, a
// functional-options constructor, and rune-level single/double-character
// dispatch -- generalized to Gekko's much smaller token set.
package scanner

import (
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/dimetcm/gekko/internal/token"
	"github.com/dimetcm/gekko/internal/value"
)

// Error is one lexical diagnostic: an unexpected character or an
// unterminated string/block comment. The scanner reports and continues.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// Option configures a Scanner at construction time.
type Option func(*Scanner)

// WithStartLine overrides the initial line number, used by the REPL driver
// to keep line numbers monotonically increasing across input lines.
func WithStartLine(line int) Option {
	return func(s *Scanner) { s.line = line }
}

// Scanner scans a single forward pass over source, with one character of
// lookahead (peek) and one more for two-character operators.
type Scanner struct {
	source  string
	start   int
	current int
	line    int

	tokens []token.Token
	errors []Error
}

// New constructs a Scanner over source.
func New(source string, opts ...Option) *Scanner {
	s := &Scanner{source: source, line: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs the scanner to completion, returning the token stream
// (always ending in exactly one EOF) and any lexical errors encountered.
func (s *Scanner) Scan() ([]token.Token, []Error) {
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", nil, s.line))
	return s.tokens, s.errors
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.source) }

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(token.LeftParen, nil)
	case ')':
		s.addToken(token.RightParen, nil)
	case '{':
		s.addToken(token.LeftBrace, nil)
	case '}':
		s.addToken(token.RightBrace, nil)
	case ',':
		s.addToken(token.Comma, nil)
	case '.':
		s.addToken(token.Dot, nil)
	case '-':
		s.addToken(token.Minus, nil)
	case '+':
		s.addToken(token.Plus, nil)
	case ':':
		s.addToken(token.Colon, nil)
	case ';':
		s.addToken(token.Semicolon, nil)
	case '*':
		s.addToken(token.Star, nil)
	case '?':
		s.addToken(token.Question, nil)
	case '!':
		if s.match('=') {
			s.addToken(token.BangEqual, nil)
		} else {
			s.addToken(token.Bang, nil)
		}
	case '=':
		if s.match('=') {
			s.addToken(token.EqualEqual, nil)
		} else {
			s.addToken(token.Equal, nil)
		}
	case '<':
		if s.match('=') {
			s.addToken(token.LessEqual, nil)
		} else {
			s.addToken(token.Less, nil)
		}
	case '>':
		if s.match('=') {
			s.addToken(token.GreaterEqual, nil)
		} else {
			s.addToken(token.Greater, nil)
		}
	case '/':
		switch {
		case s.match('/'):
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		case s.match('*'):
			s.blockComment()
		default:
			s.addToken(token.Slash, nil)
		}
	case ' ', '\r', '\t':
		// discarded
	case '\n':
		s.line++
	case '"':
		s.readString()
	default:
		switch {
		case isDigit(c):
			s.readNumber()
		case isAlpha(c):
			s.readIdentifier()
		default:
			s.errorf("Unexpected character '%c'.", c)
		}
	}
}

func (s *Scanner) blockComment() {
	for {
		if s.atEnd() {
			s.errorf("Unterminated block comment.")
			return
		}
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			return
		}
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
}

func (s *Scanner) readString() {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.errorf("Unterminated string.")
		return
	}
	s.advance() // closing quote
	// Normalize to NFC so two source files that spell the same text with
	// different combining-mark sequences compare and concatenate
	// consistently; the interpreter otherwise has no notion of Unicode
	// equivalence.
	text := norm.NFC.String(s.source[s.start+1 : s.current-1])
	s.addToken(token.String, value.String(text))
}

func (s *Scanner) readNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	f, err := strconv.ParseFloat(s.source[s.start:s.current], 64)
	if err != nil {
		s.errorf("Invalid number literal.")
		return
	}
	s.addToken(token.Number, value.Number(f))
}

func (s *Scanner) readIdentifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	s.addToken(token.LookupIdent(text), nil)
}

func (s *Scanner) addToken(typ token.Type, literal token.Literal) {
	lexeme := s.source[s.start:s.current]
	s.tokens = append(s.tokens, token.New(typ, lexeme, literal, s.line))
}

func (s *Scanner) errorf(format string, args ...any) {
	s.errors = append(s.errors, Error{Line: s.line, Message: fmt.Sprintf(format, args...)})
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }
