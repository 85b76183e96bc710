package vm

import "github.com/etai432/klang-playground/ast"

// Value is klang's run-time value. It lives in ast so that string
// interpolations (themselves parsed Expr nodes) and Expr.Literal (which
// wraps a Value) can refer to each other without an import cycle; vm only
// ever moves Values around, it never constructs AST nodes.
type Value = ast.Value

// Kind aliases let vm code compare Value.Kind without an ast. prefix at
// every call site.
const (
	KindNumber = ast.KindNumber
	KindBool   = ast.KindBool
	KindString = ast.KindString
	KindVec    = ast.KindVec
	KindNone   = ast.KindNone
)

func numberVal(n float64) Value { return ast.Number(n) }
func boolVal(b bool) Value      { return ast.Bool(b) }
func noneVal() Value            { return ast.None() }
func vecVal(elems []Value) Value {
	return ast.Vec(elems)
}
