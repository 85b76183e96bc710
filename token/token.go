// Package token defines the lexical tokens produced by the scanner and
// consumed by the parser.
package token

import "github.com/etai432/klang-playground/ast"

// Type enumerates every token kind the scanner can produce.
type Type int

const (
	LeftParen Type = iota
	RightParen
	LeftBrace
	RightBrace
	LeftSquare
	RightSquare
	Comma
	Semicolon
	Dot

	Minus
	Plus
	Slash
	Star
	Modulo

	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual
	And
	Or
	Range

	Let
	Identifier
	IntLit
	FloatLit
	BoolLit
	String
	If
	Else
	For
	In
	While
	Print
	Fn
	Return
	Printable
	NativeCall

	Eof
)

var typeNames = map[Type]string{
	LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
	LeftSquare: "[", RightSquare: "]", Comma: ",", Semicolon: ";", Dot: ".",
	Minus: "-", Plus: "+", Slash: "/", Star: "*", Modulo: "%",
	Bang: "!", BangEqual: "!=", Equal: "=", EqualEqual: "==",
	Greater: ">", GreaterEqual: ">=", Less: "<", LessEqual: "<=",
	And: "&&", Or: "||", Range: "..",
	Let: "let", Identifier: "identifier", IntLit: "int", FloatLit: "float",
	BoolLit: "bool", String: "string", If: "if", Else: "else", For: "for", In: "in",
	While: "while", Print: "print", Fn: "fn", Return: "return",
	Printable: "printable", NativeCall: "std::", Eof: "eof",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Keywords maps reserved identifiers to their token type. "std" is handled
// separately by the scanner since it requires the following "::".
var Keywords = map[string]Type{
	"let":    Let,
	"in":     In,
	"else":   Else,
	"for":    For,
	"if":     If,
	"print":  Print,
	"while":  While,
	"fn":     Fn,
	"return": Return,
	"true":   BoolLit,
	"false":  BoolLit,
}

// Token is one lexical unit: its type, the source text it came from, an
// optional literal value (set for IntLit/FloatLit/BoolLit), and
// the 1-based source line of its first character.
type Token struct {
	Type    Type
	Lexeme  string
	Literal ast.Value
	HasLit  bool
	Line    int
}

func New(t Type, lexeme string, line int) Token {
	return Token{Type: t, Lexeme: lexeme, Line: line}
}

func NewLiteral(t Type, lexeme string, line int, lit ast.Value) Token {
	return Token{Type: t, Lexeme: lexeme, Literal: lit, HasLit: true, Line: line}
}
