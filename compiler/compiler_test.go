package compiler_test

import (
	"testing"

	"github.com/etai432/klang-playground/compiler"
	"github.com/etai432/klang-playground/parser"
	"github.com/etai432/klang-playground/scanner"
	"github.com/etai432/klang-playground/vm"
)

func compile(t *testing.T, source string) *vm.Chunk {
	t.Helper()
	toks, err := scanner.Scan(source)
	if err != nil {
		t.Fatalf("Scan(%q) error = %v", source, err)
	}
	stmts, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	chunk, err := compiler.Compile(stmts)
	if err != nil {
		t.Fatalf("Compile(%q) error = %v", source, err)
	}
	return chunk
}

func opSeq(c *vm.Chunk) []vm.Op {
	out := make([]vm.Op, len(c.Code))
	for i, instr := range c.Code {
		out[i] = instr.Op
	}
	return out
}

func TestCompileVarStmt(t *testing.T) {
	chunk := compile(t, "let x = 1;")
	want := []vm.Op{vm.OpConstant, vm.OpStore, vm.OpEof}
	got := opSeq(chunk)
	if len(got) != len(want) {
		t.Fatalf("opcodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCompileIfEmitsNegatedJump(t *testing.T) {
	chunk := compile(t, "if true { print(\"x\"); }")
	found := false
	for i, instr := range chunk.Code {
		if instr.Op == vm.OpLogicalNot {
			if i+1 >= len(chunk.Code) || chunk.Code[i+1].Op != vm.OpJumpIf {
				t.Fatalf("expected a JumpIf right after LogicalNot, chunk = %v", opSeq(chunk))
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected the if-condition to be negated before branching")
	}
}

func TestCompileIfElsePatchesBothJumps(t *testing.T) {
	chunk := compile(t, "if true { print(\"a\"); } else { print(\"b\"); }")
	for i, instr := range chunk.Code {
		if instr.Op == vm.OpJumpIf || instr.Op == vm.OpJump {
			target := i + 1 + instr.Delta
			if target < 0 || target > len(chunk.Code) {
				t.Errorf("jump at %d targets out-of-range index %d (len=%d)", i, target, len(chunk.Code))
			}
		}
	}
}

func TestCompileWhileLoopsBackward(t *testing.T) {
	chunk := compile(t, "let i = 0; while i < 3 { i = i + 1; }")
	foundBackwardJump := false
	for i, instr := range chunk.Code {
		if instr.Op == vm.OpJump && instr.Delta < 0 {
			target := i + 1 + instr.Delta
			if target < 0 || target >= len(chunk.Code) {
				t.Fatalf("backward jump at %d targets out-of-range index %d", i, target)
			}
			foundBackwardJump = true
		}
	}
	if !foundBackwardJump {
		t.Fatal("expected a backward Jump to close the while loop")
	}
}

func TestCompileForLoopStructure(t *testing.T) {
	chunk := compile(t, "for i in 1..3 { print(\"x\"); }")
	ops := opSeq(chunk)
	forIdx := -1
	for i, op := range ops {
		if op == vm.OpFor {
			forIdx = i
			break
		}
	}
	if forIdx == -1 {
		t.Fatal("expected an OpFor instruction")
	}
	if ops[forIdx+1] != vm.OpJumpIf {
		t.Fatalf("expected JumpIf right after For, got %v", ops[forIdx+1])
	}
	if ops[forIdx+2] != vm.OpStore {
		t.Fatalf("expected Store right after the exit JumpIf, got %v", ops[forIdx+2])
	}
}

func TestCompileFnSplicesFnAndEndFn(t *testing.T) {
	chunk := compile(t, "fn f(a) { return a; }")
	ops := opSeq(chunk)
	if ops[0] != vm.OpFn {
		t.Fatalf("op[0] = %v, want OpFn", ops[0])
	}
	hasEndFn := false
	for _, op := range ops {
		if op == vm.OpEndFn {
			hasEndFn = true
		}
	}
	if !hasEndFn {
		t.Fatal("expected a matching OpEndFn")
	}
	if chunk.Code[0].Params[0] != "a" {
		t.Errorf("Fn params = %v, want [a]", chunk.Code[0].Params)
	}
}

func TestCompileStringInterpolationReversesOrder(t *testing.T) {
	chunk := compile(t, `let x = 1; let y = 2; print("{x} and {y}");`)
	ops := opSeq(chunk)
	// The last two Loads before Print must push y then x (reverse source
	// order), so Print's rightmost-first substitution lines placeholders
	// back up correctly.
	printIdx := -1
	for i, op := range ops {
		if op == vm.OpPrint {
			printIdx = i
		}
	}
	if printIdx < 3 {
		t.Fatalf("did not find Print with two preceding Loads, chunk = %v", ops)
	}
	if chunk.Code[printIdx-3].Name != "y" || chunk.Code[printIdx-2].Name != "x" {
		t.Errorf("Load order = [%s, %s], want [y, x]", chunk.Code[printIdx-3].Name, chunk.Code[printIdx-2].Name)
	}
}
