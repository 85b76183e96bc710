package parser_test

import (
	"testing"

	"github.com/etai432/klang-playground/ast"
	"github.com/etai432/klang-playground/parser"
	"github.com/etai432/klang-playground/scanner"
)

func parse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	toks, err := scanner.Scan(source)
	if err != nil {
		t.Fatalf("Scan(%q) error = %v", source, err)
	}
	stmts, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	return stmts
}

func TestParseVarDecl(t *testing.T) {
	stmts := parse(t, "let x = 1 + 2;")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	v, ok := stmts[0].(ast.VarStmt)
	if !ok {
		t.Fatalf("statement type = %T, want ast.VarStmt", stmts[0])
	}
	if v.Name != "x" {
		t.Errorf("Name = %q, want %q", v.Name, "x")
	}
	bin, ok := v.Init.(ast.Binary)
	if !ok || bin.Op != "+" {
		t.Errorf("Init = %#v, want a '+' ast.Binary", v.Init)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): the outer node is '+'.
	stmts := parse(t, "let x = 1 + 2 * 3;")
	v := stmts[0].(ast.VarStmt)
	bin, ok := v.Init.(ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("outer op = %#v, want '+'", v.Init)
	}
	rhs, ok := bin.Right.(ast.Binary)
	if !ok || rhs.Op != "*" {
		t.Errorf("right-hand side = %#v, want a '*' ast.Binary", bin.Right)
	}
}

func TestParseFnDeclAndCall(t *testing.T) {
	stmts := parse(t, "fn add(a, b) { return a + b; } add(1, 2);")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	fn, ok := stmts[0].(ast.FnStmt)
	if !ok {
		t.Fatalf("statement[0] type = %T, want ast.FnStmt", stmts[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("fn = %+v, want name add with 2 params", fn)
	}
	exprStmt, ok := stmts[1].(ast.ExprStmt)
	if !ok {
		t.Fatalf("statement[1] type = %T, want ast.ExprStmt", stmts[1])
	}
	call, ok := exprStmt.Expr.(ast.Call)
	if !ok || call.Callee != "add" || len(call.Args) != 2 {
		t.Errorf("call = %+v, want add(1, 2)", exprStmt.Expr)
	}
}

func TestParseIfElse(t *testing.T) {
	stmts := parse(t, "if x { print(\"a\"); } else { print(\"b\"); }")
	ifs, ok := stmts[0].(ast.IfStmt)
	if !ok {
		t.Fatalf("statement type = %T, want ast.IfStmt", stmts[0])
	}
	if ifs.Else == nil {
		t.Error("Else = nil, want a populated else block")
	}
}

func TestParseForRange(t *testing.T) {
	stmts := parse(t, "for i in 1..10..2 { print(\"x\"); }")
	f, ok := stmts[0].(ast.ForStmt)
	if !ok {
		t.Fatalf("statement type = %T, want ast.ForStmt", stmts[0])
	}
	r, ok := f.Iterable.(ast.RangeExpr)
	if !ok || r.Step == nil {
		t.Errorf("Iterable = %#v, want an ast.RangeExpr with a step", f.Iterable)
	}
}

func TestParseStringInterpolation(t *testing.T) {
	stmts := parse(t, `let x = 1; print("value: {x + 1}");`)
	p, ok := stmts[1].(ast.PrintStmt)
	if !ok {
		t.Fatalf("statement type = %T, want ast.PrintStmt", stmts[1])
	}
	if len(p.Value.Interpolations) != 1 {
		t.Fatalf("got %d interpolations, want 1", len(p.Value.Interpolations))
	}
	if _, ok := p.Value.Interpolations[0].(ast.Binary); !ok {
		t.Errorf("interpolation expr = %#v, want an ast.Binary", p.Value.Interpolations[0])
	}
}

func TestParsePrintRejectsNonStringLiteral(t *testing.T) {
	toks, err := scanner.Scan("let x = 1; print(x);")
	if err != nil {
		t.Fatalf("Scan error = %v", err)
	}
	if _, err := parser.Parse(toks); err == nil {
		t.Fatal("expected an error: print only accepts a string literal")
	}
}

func TestParseAssignmentToNonVariableRejected(t *testing.T) {
	toks, err := scanner.Scan("1 = 2;")
	if err != nil {
		t.Fatalf("Scan error = %v", err)
	}
	if _, err := parser.Parse(toks); err == nil {
		t.Fatal("expected an error: cannot assign to a non-variable")
	}
}

func TestParseMissingSemicolon(t *testing.T) {
	toks, err := scanner.Scan("let x = 1")
	if err != nil {
		t.Fatalf("Scan error = %v", err)
	}
	if _, err := parser.Parse(toks); err == nil {
		t.Fatal("expected an error for a missing ';'")
	}
}

func TestParseVectorLiteral(t *testing.T) {
	stmts := parse(t, "let v = [1, 2, 3];")
	v := stmts[0].(ast.VarStmt)
	vec, ok := v.Init.(ast.VecExpr)
	if !ok || len(vec.Elements) != 3 {
		t.Errorf("Init = %#v, want a 3-element ast.VecExpr", v.Init)
	}
}
