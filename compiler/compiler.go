// Package compiler lowers klang's AST to a flat vm.Chunk: one opcode per
// AST node (plus jump-patching bookkeeping for control flow), with a
// source line recorded alongside every opcode for diagnostics.
package compiler

import (
	"github.com/pkg/errors"

	"github.com/etai432/klang-playground/ast"
	"github.com/etai432/klang-playground/vm"
)

type compiler struct {
	chunk *vm.Chunk
}

// Compile walks a parsed program and returns its compiled Chunk.
func Compile(stmts []ast.Stmt) (*vm.Chunk, error) {
	c := &compiler{chunk: vm.NewChunk()}
	for _, s := range stmts {
		if err := c.stmt(s); err != nil {
			return nil, err
		}
	}
	c.chunk.Emit(0, vm.Instr{Op: vm.OpEof})
	return c.chunk, nil
}

func (c *compiler) emit(line int, instr vm.Instr) int {
	return c.chunk.Emit(line, instr)
}

func (c *compiler) stmt(s ast.Stmt) error {
	switch st := s.(type) {
	case ast.VarStmt:
		return c.varStmt(st)
	case ast.ExprStmt:
		return c.expr(st.Expr)
	case ast.PrintStmt:
		return c.printStmt(st)
	case ast.Block:
		return c.block(st)
	case ast.IfStmt:
		return c.ifStmt(st)
	case ast.WhileStmt:
		return c.whileStmt(st)
	case ast.ForStmt:
		return c.forStmt(st)
	case ast.FnStmt:
		return c.fnStmt(st)
	case ast.ReturnStmt:
		return c.returnStmt(st)
	default:
		return errors.Errorf("compiler: unhandled statement type %T", s)
	}
}

func (c *compiler) varStmt(s ast.VarStmt) error {
	if s.Init != nil {
		if err := c.expr(s.Init); err != nil {
			return err
		}
	} else {
		c.emit(s.Ln, vm.Instr{Op: vm.OpConstant, Const: ast.None()})
	}
	c.emit(s.Ln, vm.Instr{Op: vm.OpStore, Name: s.Name})
	return nil
}

// printStmt compiles the string literal the parser already validated as
// Print's only legal argument, then the Print opcode itself.
func (c *compiler) printStmt(s ast.PrintStmt) error {
	if err := c.literal(s.Value, s.Ln); err != nil {
		return err
	}
	c.emit(s.Ln, vm.Instr{Op: vm.OpPrint})
	return nil
}

// block wraps a lexical block in Scope/EndScope. Used for if/while bodies;
// for-loops compile their body directly (see forStmt) since the For opcode
// opens its own scope.
func (c *compiler) block(b ast.Block) error {
	c.emit(b.StartLn, vm.Instr{Op: vm.OpScope})
	for _, st := range b.Stmts {
		if err := c.stmt(st); err != nil {
			return err
		}
	}
	c.emit(b.EndLn, vm.Instr{Op: vm.OpEndScope})
	return nil
}

// ifStmt negates the condition so the single JumpIf-on-true opcode can be
// reused to mean "skip the then-block when false": compile cond, negate,
// JumpIf over the then-block to the else-block (or past the whole
// statement if there's no else), with an unconditional jump at the end of
// the then-block to skip over the else-block.
func (c *compiler) ifStmt(s ast.IfStmt) error {
	if err := c.expr(s.Cond); err != nil {
		return err
	}
	c.emit(s.Ln, vm.Instr{Op: vm.OpLogicalNot})
	jumpIdx := c.emit(s.Ln, vm.Instr{Op: vm.OpJumpIf, Consume: true})

	if err := c.block(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		elseJumpIdx := c.emit(s.Then.EndLn, vm.Instr{Op: vm.OpJump})
		c.chunk.PatchDelta(jumpIdx, c.chunk.Len())
		if err := c.block(*s.Else); err != nil {
			return err
		}
		c.chunk.PatchDelta(elseJumpIdx, c.chunk.Len())
	} else {
		c.chunk.PatchDelta(jumpIdx, c.chunk.Len())
	}
	return nil
}

func (c *compiler) whileStmt(s ast.WhileStmt) error {
	loopStart := c.chunk.Len()
	if err := c.expr(s.Cond); err != nil {
		return err
	}
	c.emit(s.Ln, vm.Instr{Op: vm.OpLogicalNot})
	jumpIdx := c.emit(s.Ln, vm.Instr{Op: vm.OpJumpIf, Consume: true})

	if err := c.block(s.Body); err != nil {
		return err
	}
	backIdx := c.emit(s.Body.EndLn, vm.Instr{Op: vm.OpJump})
	c.chunk.PatchDelta(backIdx, loopStart)
	c.chunk.PatchDelta(jumpIdx, c.chunk.Len())
	return nil
}

// forStmt compiles the iterable once, then a loop whose single For opcode
// both opens the loop's scope (on its first pass) and produces the next
// (element, done) pair (on every pass, including loop-backs) — see
// vm.Instance.forOp. The done flag lands on top of the stack for the
// JumpIf that follows it; when false, Store(ident) consumes the element
// left beneath it. The whole loop is wrapped in its own Scope/EndScope so
// that For's first pass always finds a leaf without iterator state, even
// when the loop sits directly in another for-loop's body.
func (c *compiler) forStmt(s ast.ForStmt) error {
	c.emit(s.Ln, vm.Instr{Op: vm.OpScope})
	if err := c.expr(s.Iterable); err != nil {
		return err
	}
	forIdx := c.emit(s.Ln, vm.Instr{Op: vm.OpFor})
	exitJumpIdx := c.emit(s.Ln, vm.Instr{Op: vm.OpJumpIf, Consume: true})
	c.emit(s.Ln, vm.Instr{Op: vm.OpStore, Name: s.Ident})

	for _, st := range s.Body.Stmts {
		if err := c.stmt(st); err != nil {
			return err
		}
	}
	backIdx := c.emit(s.Body.EndLn, vm.Instr{Op: vm.OpJump})
	c.chunk.PatchDelta(backIdx, forIdx)

	endScopeIdx := c.emit(s.Body.EndLn, vm.Instr{Op: vm.OpEndScope})
	c.chunk.PatchDelta(exitJumpIdx, endScopeIdx)
	c.emit(s.Body.EndLn, vm.Instr{Op: vm.OpEndScope})
	return nil
}

// fnStmt emits Fn carrying the function's name and parameter list directly
// as operands (rather than as separate Store opcodes executed at
// declaration time): the VM harvests everything between Fn and its
// matching EndFn into the function table the first time it reaches Fn, and
// never executes the body until a matching Call splices it in. See
// vm.Instance.harvestFn.
func (c *compiler) fnStmt(s ast.FnStmt) error {
	c.emit(s.Ln, vm.Instr{Op: vm.OpFn, Name: s.Name, Params: s.Params})
	if err := c.block(s.Body); err != nil {
		return err
	}
	c.emit(s.Body.EndLn, vm.Instr{Op: vm.OpEndFn})
	return nil
}

func (c *compiler) returnStmt(s ast.ReturnStmt) error {
	if s.Value != nil {
		if err := c.expr(s.Value); err != nil {
			return err
		}
		c.emit(s.Ln, vm.Instr{Op: vm.OpReturn, HasValue: true})
		return nil
	}
	c.emit(s.Ln, vm.Instr{Op: vm.OpReturn})
	return nil
}

func (c *compiler) expr(e ast.Expr) error {
	switch ex := e.(type) {
	case ast.Literal:
		return c.literal(ex.Value, ex.Ln)
	case ast.Variable:
		c.emit(ex.Ln, vm.Instr{Op: vm.OpLoad, Name: ex.Name})
		return nil
	case ast.Unary:
		return c.unary(ex)
	case ast.Binary:
		return c.binary(ex)
	case ast.Grouping:
		return c.expr(ex.Expr)
	case ast.Assign:
		if err := c.expr(ex.Value); err != nil {
			return err
		}
		c.emit(ex.Ln, vm.Instr{Op: vm.OpStore, Name: ex.Name})
		return nil
	case ast.Call:
		return c.call(ex)
	case ast.VecExpr:
		return c.vecExpr(ex)
	case ast.RangeExpr:
		return c.rangeExpr(ex)
	default:
		return errors.Errorf("compiler: unhandled expression type %T", e)
	}
}

// literal compiles the interpolation expressions of a string value in
// reverse list order, so that Print's rightmost-first substitution pairs
// each popped value back up with the placeholder it belongs to, then
// emits the value itself as a constant.
func (c *compiler) literal(v ast.Value, line int) error {
	if v.Kind == ast.KindString {
		for idx := len(v.Interpolations) - 1; idx >= 0; idx-- {
			if err := c.expr(v.Interpolations[idx]); err != nil {
				return err
			}
		}
	}
	c.emit(line, vm.Instr{Op: vm.OpConstant, Const: v})
	return nil
}

func (c *compiler) unary(e ast.Unary) error {
	if err := c.expr(e.Expr); err != nil {
		return err
	}
	switch e.Op {
	case "-":
		c.emit(e.Ln, vm.Instr{Op: vm.OpNegate})
	case "!":
		c.emit(e.Ln, vm.Instr{Op: vm.OpLogicalNot})
	default:
		return errors.Errorf("compiler: unknown unary operator %q", e.Op)
	}
	return nil
}

func (c *compiler) binary(e ast.Binary) error {
	if err := c.expr(e.Left); err != nil {
		return err
	}
	if err := c.expr(e.Right); err != nil {
		return err
	}
	op, ok := binaryOpcode(e.Op)
	if !ok {
		return errors.Errorf("compiler: unknown binary operator %q", e.Op)
	}
	c.emit(e.Ln, vm.Instr{Op: op})
	return nil
}

func binaryOpcode(op string) (vm.Op, bool) {
	switch op {
	case "+":
		return vm.OpAdd, true
	case "-":
		return vm.OpSubtract, true
	case "*":
		return vm.OpMultiply, true
	case "/":
		return vm.OpDivide, true
	case "%":
		return vm.OpModulo, true
	case "==":
		return vm.OpEqualEqual, true
	case "!=":
		return vm.OpNotEqual, true
	case "<":
		return vm.OpLess, true
	case "<=":
		return vm.OpLessEqual, true
	case ">":
		return vm.OpGreater, true
	case ">=":
		return vm.OpGreaterEqual, true
	case "&&":
		return vm.OpLogicalAnd, true
	case "||":
		return vm.OpLogicalOr, true
	}
	return 0, false
}

func (c *compiler) call(e ast.Call) error {
	for _, a := range e.Args {
		if err := c.expr(a); err != nil {
			return err
		}
	}
	if e.IsNative {
		c.emit(e.Ln, vm.Instr{Op: vm.OpNativeCall, Name: e.Callee, Argc: len(e.Args)})
	} else {
		c.emit(e.Ln, vm.Instr{Op: vm.OpCall, Name: e.Callee})
	}
	return nil
}

func (c *compiler) vecExpr(e ast.VecExpr) error {
	for _, el := range e.Elements {
		if err := c.expr(el); err != nil {
			return err
		}
	}
	c.emit(e.Ln, vm.Instr{Op: vm.OpIterable, Argc: len(e.Elements)})
	return nil
}

func (c *compiler) rangeExpr(e ast.RangeExpr) error {
	if err := c.expr(e.Min); err != nil {
		return err
	}
	if err := c.expr(e.Max); err != nil {
		return err
	}
	hasStep := e.Step != nil
	if hasStep {
		if err := c.expr(e.Step); err != nil {
			return err
		}
	}
	c.emit(e.Ln, vm.Instr{Op: vm.OpRange, HasStep: hasStep})
	return nil
}
