// Package parser implements a recursive-descent parser with precedence
// climbing that turns a token sequence into klang's abstract syntax tree.
//
// Parsing is fail-fast: the first grammar violation is returned immediately,
// unlike the scanner which accumulates every lexical error it finds.
package parser

import (
	"strings"

	"github.com/etai432/klang-playground/ast"
	"github.com/etai432/klang-playground/kerr"
	"github.com/etai432/klang-playground/scanner"
	"github.com/etai432/klang-playground/token"
)

// ErrParse is the single formatted parser error returned on the first
// grammar violation encountered.
type ErrParse string

func (e ErrParse) Error() string { return string(e) }

type parser struct {
	tokens  []token.Token
	current int
}

// Parse turns a token sequence (as produced by scanner.Scan) into a sequence
// of top-level statements.
func Parse(tokens []token.Token) ([]ast.Stmt, error) {
	p := &parser{tokens: tokens}
	var stmts []ast.Stmt
	for !p.atEnd() {
		s, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *parser) errorf(msg string) error {
	return ErrParse(kerr.Format(kerr.Parser, p.peek().Line, msg))
}

func (p *parser) peek() token.Token { return p.tokens[p.current] }
func (p *parser) previous() token.Token { return p.tokens[p.current-1] }
func (p *parser) atEnd() bool       { return p.peek().Type == token.Eof }

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) check(t token.Type) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(t token.Type, msg string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf(msg)
}

// ---- statements ----

func (p *parser) declaration() (ast.Stmt, error) {
	if p.match(token.Let) {
		return p.varDecl()
	}
	if p.match(token.Fn) {
		return p.fnDecl()
	}
	return p.statement()
}

func (p *parser) varDecl() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "expected a variable name after 'let'")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(token.Equal) {
		init, err = p.logical()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "missing ';' at the end of the statement"); err != nil {
		return nil, err
	}
	return ast.VarStmt{Name: name.Lexeme, Init: init, Ln: name.Line}, nil
}

func (p *parser) fnDecl() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "expected a function name after 'fn'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LeftParen, "expected '(' after the function name"); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(token.RightParen) {
		for {
			pt, err := p.consume(token.Identifier, "function parameters must be identifiers")
			if err != nil {
				return nil, err
			}
			params = append(params, pt.Lexeme)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "expected ')' to close the parameter list"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return ast.FnStmt{Name: name.Lexeme, Params: params, Body: body, Ln: name.Line}, nil
}

func (p *parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.Print):
		return p.printStmt()
	case p.check(token.LeftBrace):
		return p.block()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.Return):
		return p.returnStmt()
	default:
		return p.exprStmt()
	}
}

func (p *parser) returnStmt() (ast.Stmt, error) {
	line := p.previous().Line
	if p.match(token.Semicolon) {
		return ast.ReturnStmt{Ln: line}, nil
	}
	value, err := p.logical()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "missing ';' at the end of the statement"); err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Value: value, Ln: line}, nil
}

func (p *parser) forStmt() (ast.Stmt, error) {
	ident, err := p.consume(token.Identifier, "expected a loop variable after 'for'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.In, "expected 'in' after the loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.rangeExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return ast.ForStmt{Ident: ident.Lexeme, Iterable: iterable, Body: body, Ln: ident.Line}, nil
}

func (p *parser) ifStmt() (ast.Stmt, error) {
	cond, err := p.logical()
	if err != nil {
		return nil, err
	}
	line := p.previous().Line
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	if p.match(token.Else) {
		elseBlk, err := p.block()
		if err != nil {
			return nil, err
		}
		return ast.IfStmt{Cond: cond, Then: then, Else: &elseBlk, Ln: line}, nil
	}
	return ast.IfStmt{Cond: cond, Then: then, Ln: line}, nil
}

func (p *parser) whileStmt() (ast.Stmt, error) {
	cond, err := p.logical()
	if err != nil {
		return nil, err
	}
	line := p.previous().Line
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Cond: cond, Body: body, Ln: line}, nil
}

func (p *parser) block() (ast.Block, error) {
	if _, err := p.consume(token.LeftBrace, "a block must start with '{'"); err != nil {
		return ast.Block{}, err
	}
	start := p.previous().Line
	var stmts []ast.Stmt
	for !p.atEnd() && !p.check(token.RightBrace) {
		s, err := p.declaration()
		if err != nil {
			return ast.Block{}, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.consume(token.RightBrace, "a block must end with '}'"); err != nil {
		return ast.Block{}, err
	}
	return ast.Block{Stmts: stmts, StartLn: start, EndLn: p.previous().Line}, nil
}

func (p *parser) printStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LeftParen, "expected '(' after 'print'"); err != nil {
		return nil, err
	}
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	lit, ok := expr.(ast.Literal)
	if !ok || lit.Value.Kind != ast.KindString {
		return nil, p.errorf("print only accepts a string literal")
	}
	line := p.peek().Line
	if _, err := p.consume(token.RightParen, "expected ')' after the print argument"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "missing ';' at the end of the statement"); err != nil {
		return nil, err
	}
	return ast.PrintStmt{Value: lit.Value, Ln: line}, nil
}

func (p *parser) exprStmt() (ast.Stmt, error) {
	e, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Semicolon, "missing ';' at the end of the statement"); err != nil {
		return nil, err
	}
	return ast.ExprStmt{Expr: e}, nil
}

// ---- expressions ----

func (p *parser) assignment() (ast.Expr, error) {
	expr, err := p.logical()
	if err != nil {
		return nil, err
	}
	if p.match(token.Equal) {
		value, err := p.logical()
		if err != nil {
			return nil, err
		}
		v, ok := expr.(ast.Variable)
		if !ok {
			return nil, p.errorf("cannot assign to anything other than a variable")
		}
		return ast.Assign{Name: v.Name, Value: value, Ln: v.Ln}, nil
	}
	return expr, nil
}

func (p *parser) logical() (ast.Expr, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(token.And, token.Or) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Op: op.Lexeme, Left: left, Right: right, Ln: op.Line}
	}
	return left, nil
}

func (p *parser) equality() (ast.Expr, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.match(token.BangEqual, token.EqualEqual) {
		op := p.previous()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Op: op.Lexeme, Left: left, Right: right, Ln: op.Line}
	}
	return left, nil
}

func (p *parser) comparison() (ast.Expr, error) {
	left, err := p.rangeExpr()
	if err != nil {
		return nil, err
	}
	if p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right, err := p.rangeExpr()
		if err != nil {
			return nil, err
		}
		return ast.Binary{Op: op.Lexeme, Left: left, Right: right, Ln: op.Line}, nil
	}
	return left, nil
}

func (p *parser) rangeExpr() (ast.Expr, error) {
	start, err := p.term()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Range) {
		return start, nil
	}
	end, err := p.term()
	if err != nil {
		return nil, err
	}
	line := p.previous().Line
	if !p.match(token.Range) {
		return ast.RangeExpr{Min: start, Max: end, Ln: line}, nil
	}
	step, err := p.term()
	if err != nil {
		return nil, err
	}
	return ast.RangeExpr{Min: start, Max: end, Step: step, Ln: p.previous().Line}, nil
}

func (p *parser) term() (ast.Expr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.match(token.Plus, token.Minus) {
		op := p.previous()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Op: op.Lexeme, Left: left, Right: right, Ln: op.Line}
	}
	return left, nil
}

func (p *parser) factor() (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(token.Slash, token.Star, token.Modulo) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Op: op.Lexeme, Left: left, Right: right, Ln: op.Line}
	}
	return left, nil
}

func (p *parser) unary() (ast.Expr, error) {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: op.Lexeme, Expr: e, Ln: op.Line}, nil
	}
	return p.call(false)
}

func (p *parser) call(native bool) (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.match(token.LeftParen) {
		return expr, nil
	}
	v, ok := expr.(ast.Variable)
	if !ok {
		return nil, p.errorf("cannot call a non-identifier as a function")
	}
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			a, err := p.logical()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "expected ')' to close the call"); err != nil {
		return nil, err
	}
	return ast.Call{Callee: v.Name, Args: args, IsNative: native, Ln: v.Ln}, nil
}

func (p *parser) primary() (ast.Expr, error) {
	switch {
	case p.match(token.BoolLit):
		t := p.previous()
		return ast.Literal{Value: t.Literal, Ln: t.Line}, nil

	case p.match(token.LeftSquare):
		line := p.previous().Line
		var elems []ast.Expr
		if !p.check(token.RightSquare) {
			for {
				e, err := p.logical()
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
				if !p.match(token.Comma) {
					break
				}
			}
		}
		if _, err := p.consume(token.RightSquare, "expected ']' to close the vector literal"); err != nil {
			return nil, err
		}
		return ast.VecExpr{Elements: elems, Ln: line}, nil

	case p.match(token.String):
		return p.stringLiteral()

	case p.match(token.IntLit, token.FloatLit):
		t := p.previous()
		return ast.Literal{Value: t.Literal, Ln: t.Line}, nil

	case p.match(token.LeftParen):
		e, err := p.logical()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "expected ')' after the expression"); err != nil {
			return nil, err
		}
		return ast.Grouping{Expr: e, Ln: e.Line()}, nil

	case p.match(token.NativeCall):
		return p.call(true)

	case p.match(token.Identifier):
		t := p.previous()
		return ast.Variable{Name: t.Lexeme, Ln: t.Line}, nil
	}
	return nil, p.errorf("expected an expression, found " + p.peek().Type.String())
}

// stringLiteral finishes parsing a String token: it collects the Printable
// tokens the scanner emitted right after it, re-scans and re-parses each
// one's captured text, and splices the resulting tokens back into the
// parser's own stream so that interpolation expressions can use the full
// expression grammar (including calls to user functions and natives).
func (p *parser) stringLiteral() (ast.Expr, error) {
	text := p.previous().Lexeme
	line := p.previous().Line

	var printableLexemes []string
	for p.match(token.Printable) {
		printableLexemes = append(printableLexemes, p.previous().Lexeme)
	}

	var interpolations []ast.Expr
	for _, lexeme := range printableLexemes {
		if strings.Contains(lexeme, "\"") {
			return nil, p.errorf("string interpolation cannot contain a nested string literal")
		}
		subTokens, err := scanner.Scan(lexeme)
		if err != nil {
			return nil, err
		}
		// drop the Eof token before splicing
		subTokens = subTokens[:len(subTokens)-1]
		p.tokens = append(p.tokens[:p.current:p.current], append(subTokens, p.tokens[p.current:]...)...)

		expr, err := p.logical()
		if err != nil {
			return nil, err
		}
		interpolations = append(interpolations, expr)
	}
	return ast.Literal{Value: ast.String(text, interpolations), Ln: line}, nil
}
