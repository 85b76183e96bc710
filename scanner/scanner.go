// Package scanner converts klang source text into a token sequence, single
// pass, tracking a current line number as it goes.
package scanner

import (
	"strconv"
	"strings"

	"github.com/etai432/klang-playground/ast"
	"github.com/etai432/klang-playground/kerr"
	"github.com/etai432/klang-playground/token"
)

// ErrScan is returned when one or more lexical errors were encountered.
// Unlike the parser, the scanner does not fail fast: it keeps scanning so
// that every error on every line is reported together.
type ErrScan []string

func (e ErrScan) Error() string { return strings.Join(e, "\n") }

type scanner struct {
	src    string
	pos    int
	line   int
	tokens []token.Token
	errs   ErrScan
}

// Scan lexes source and returns its token sequence. If any lexical error was
// encountered, the token sequence is discarded and an ErrScan is returned
// instead, holding one formatted line per error.
func Scan(source string) ([]token.Token, error) {
	s := &scanner{src: source, line: 1}
	for s.pos < len(s.src) {
		s.scanOne()
	}
	s.emit(token.Eof, "", s.line)
	if len(s.errs) > 0 {
		return nil, s.errs
	}
	return s.tokens, nil
}

func (s *scanner) error(msg string) {
	s.errs = append(s.errs, kerr.Format(kerr.Scanner, s.line, msg))
}

func (s *scanner) emit(t token.Type, lexeme string, line int) {
	s.tokens = append(s.tokens, token.New(t, lexeme, line))
}

func (s *scanner) emitLit(t token.Type, lexeme string, line int, v ast.Value) {
	s.tokens = append(s.tokens, token.NewLiteral(t, lexeme, line, v))
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekNext() byte {
	if s.pos+1 >= len(s.src) {
		return 0
	}
	return s.src[s.pos+1]
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	return c
}

func (s *scanner) match(c byte) bool {
	if s.peek() != c {
		return false
	}
	s.pos++
	return true
}

// lastType returns the type of the nth-from-last token already emitted
// (1 = last, 2 = second-to-last); ok is false if there aren't that many yet.
func (s *scanner) lastType(n int) (token.Type, bool) {
	if len(s.tokens) < n {
		return 0, false
	}
	return s.tokens[len(s.tokens)-n].Type, true
}

func (s *scanner) scanOne() {
	line := s.line
	c := s.advance()
	switch c {
	case '(':
		s.emit(token.LeftParen, "(", line)
	case ')':
		s.emit(token.RightParen, ")", line)
	case '{':
		s.emit(token.LeftBrace, "{", line)
	case '}':
		s.emit(token.RightBrace, "}", line)
	case '[':
		s.emit(token.LeftSquare, "[", line)
	case ']':
		s.emit(token.RightSquare, "]", line)
	case ',':
		s.emit(token.Comma, ",", line)
	case ';':
		s.emit(token.Semicolon, ";", line)
	case '+':
		s.emit(token.Plus, "+", line)
	case '*':
		s.emit(token.Star, "*", line)
	case '%':
		s.emit(token.Modulo, "%", line)
	case '-':
		// Matches the original implementation: the spam check only applies
		// once at least two prior tokens exist, so a leading "--" at the
		// very start of a program is not itself flagged here.
		if len(s.tokens) >= 2 {
			last, _ := s.lastType(1)
			prev, _ := s.lastType(2)
			if last == token.Minus && prev != token.IntLit && prev != token.FloatLit {
				s.error("repeated unary minus is not allowed; use a single '-'")
			}
		}
		s.emit(token.Minus, "-", line)
	case '!':
		if s.match('=') {
			s.emit(token.BangEqual, "!=", line)
		} else {
			if last, ok := s.lastType(1); ok && last == token.Bang {
				s.error("repeated '!' is not allowed; use a single '!'")
			}
			s.emit(token.Bang, "!", line)
		}
	case '=':
		if s.match('=') {
			s.emit(token.EqualEqual, "==", line)
		} else {
			s.emit(token.Equal, "=", line)
		}
	case '>':
		if s.match('=') {
			s.emit(token.GreaterEqual, ">=", line)
		} else {
			s.emit(token.Greater, ">", line)
		}
	case '<':
		if s.match('=') {
			s.emit(token.LessEqual, "<=", line)
		} else {
			s.emit(token.Less, "<", line)
		}
	case '.':
		if s.match('.') {
			s.emit(token.Range, "..", line)
		} else {
			s.emit(token.Dot, ".", line)
		}
	case '&':
		if s.match('&') {
			s.emit(token.And, "&&", line)
		} else {
			s.error("missing a second '&' to form '&&'")
		}
	case '|':
		if s.match('|') {
			s.emit(token.Or, "||", line)
		} else {
			s.error("missing a second '|' to form '||'")
		}
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && s.pos < len(s.src) {
				s.pos++
			}
		} else {
			s.emit(token.Slash, "/", line)
		}
	case '"':
		s.scanString(line)
	case ' ', '\r', '\t':
		// ignored
	case '\n':
		s.line++
	default:
		switch {
		case isDigit(c):
			s.scanNumber(c, line)
		case isAlpha(c):
			s.scanIdentifier(c, line)
		default:
			s.error("unexpected character '" + string(c) + "'")
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }

func (s *scanner) scanIdentifier(first byte, line int) {
	start := s.pos - 1
	for isAlphaNumeric(s.peek()) {
		s.pos++
	}
	word := s.src[start:s.pos]

	if word == "std" {
		if s.peek() == ':' && s.peekNext() == ':' {
			s.pos += 2
			s.emit(token.NativeCall, "std::", line)
			return
		}
		s.error("'std' must be followed by '::' to call a native function")
		return
	}

	if tt, ok := token.Keywords[word]; ok {
		if tt == token.BoolLit {
			s.emitLit(token.BoolLit, word, line, ast.Bool(word == "true"))
		} else {
			s.emit(tt, word, line)
		}
		return
	}
	s.emit(token.Identifier, word, line)
}

func (s *scanner) scanNumber(first byte, line int) {
	start := s.pos - 1
	for isDigit(s.peek()) {
		s.pos++
	}
	if s.peek() != '.' {
		s.finishInt(s.src[start:s.pos], line)
		return
	}
	// consume the dot tentatively
	dotPos := s.pos
	s.pos++
	if s.peek() == '.' {
		// this was actually the start of a range operator: the digits
		// before it form a plain integer.
		s.pos = dotPos
		s.finishInt(s.src[start:s.pos], line)
		s.pos++ // consume first '.'
		s.pos++ // consume second '.'
		s.emit(token.Range, "..", line)
		return
	}
	fracStart := s.pos
	for isDigit(s.peek()) {
		s.pos++
	}
	if s.pos == fracStart {
		s.error("a float cannot end with a trailing '.'")
		return
	}
	text := s.src[start:s.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.error("failed to parse float literal '" + text + "'")
		return
	}
	s.emitLit(token.FloatLit, text, line, ast.Number(v))
}

func (s *scanner) finishInt(text string, line int) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		s.error("failed to parse integer literal '" + text + "'")
		return
	}
	s.emitLit(token.IntLit, text, line, ast.Number(float64(n)))
}

func (s *scanner) scanString(startLine int) {
	var text strings.Builder
	// Printable tokens must follow the enclosing String token (spec.md 4.1),
	// so the interpolations captured while scanning the body are buffered
	// here and only appended to s.tokens after the String token is emitted.
	type printable struct {
		lexeme string
		line   int
	}
	var printables []printable
	for {
		if s.pos >= len(s.src) {
			// reported at the line the string opened on, not where input ran out
			s.errs = append(s.errs, kerr.Format(kerr.Scanner, startLine, "unterminated string"))
			return
		}
		c := s.peek()
		if c == '"' {
			s.pos++
			break
		}
		if c == '\n' {
			s.line++
		}
		if c == '{' {
			s.pos++
			text.WriteByte('{')
			if s.peek() == '}' {
				s.error("cannot interpolate an empty {}")
				return
			}
			inner, ok := s.scanInterpolation()
			if !ok {
				return
			}
			if strings.Contains(inner, "\"") {
				s.error("string interpolation cannot contain a nested string literal")
				return
			}
			printables = append(printables, printable{lexeme: inner, line: s.line})
			// the closing '}' was deliberately left unconsumed by
			// scanInterpolation; the next loop iteration re-reads it and
			// appends it to text via the default path below.
			continue
		}
		s.pos++
		text.WriteByte(c)
	}
	s.emit(token.String, text.String(), startLine)
	for _, p := range printables {
		s.tokens = append(s.tokens, token.New(token.Printable, p.lexeme, p.line))
	}
}

// scanInterpolation consumes a brace-balanced {...} body (the opening '{' has
// already been consumed by the caller) and returns its inner text, without
// consuming the closing '}' itself: the outer string loop consumes it on its
// next iteration so that it ends up appended to the literal text, producing
// the "{}" placeholder pair that Print later substitutes.
func (s *scanner) scanInterpolation() (string, bool) {
	var inner strings.Builder
	depth := 1
	for {
		if s.pos >= len(s.src) {
			s.error("unterminated string interpolation")
			return "", false
		}
		c := s.peek()
		if c == '\n' {
			s.line++
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return inner.String(), true
			}
		}
		s.pos++
		inner.WriteByte(c)
	}
}
