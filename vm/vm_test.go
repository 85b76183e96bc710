package vm_test

import (
	"strings"
	"testing"

	"github.com/etai432/klang-playground/vm"
)

func TestChunkPatchDelta(t *testing.T) {
	c := vm.NewChunk()
	c.Emit(1, vm.Instr{Op: vm.OpConstant, Const: vm.Value{Kind: vm.KindNumber, Number: 1}})
	jumpIdx := c.Emit(1, vm.Instr{Op: vm.OpJump})
	c.Emit(2, vm.Instr{Op: vm.OpEof})
	c.PatchDelta(jumpIdx, c.Len())
	want := c.Len() - (jumpIdx + 1)
	if got := c.Code[jumpIdx].Delta; got != want {
		t.Errorf("Delta = %d, want %d", got, want)
	}
}

func TestChunkSplice(t *testing.T) {
	c := vm.NewChunk()
	c.Emit(1, vm.Instr{Op: vm.OpConstant})
	c.Emit(2, vm.Instr{Op: vm.OpEof})
	c.Splice(1, []vm.Instr{{Op: vm.OpPrint}}, []int{5})
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if c.Code[1].Op != vm.OpPrint || c.Lines[1] != 5 {
		t.Errorf("spliced instruction = %+v at line %d, want OpPrint at line 5", c.Code[1], c.Lines[1])
	}
	if c.Code[2].Op != vm.OpEof {
		t.Errorf("trailing instruction = %v, want OpEof to have shifted right", c.Code[2].Op)
	}
}

// TestRunArithmeticAndPrint hand-assembles a tiny chunk (bypassing the
// compiler) to exercise Instance.Run's opcode dispatch directly:
// push 2, push 3, add, print "{}" with the sum substituted in.
func TestRunArithmeticAndPrint(t *testing.T) {
	c := vm.NewChunk()
	c.Emit(1, vm.Instr{Op: vm.OpConstant, Const: vm.Value{Kind: vm.KindNumber, Number: 2}})
	c.Emit(1, vm.Instr{Op: vm.OpConstant, Const: vm.Value{Kind: vm.KindNumber, Number: 3}})
	c.Emit(1, vm.Instr{Op: vm.OpAdd})
	c.Emit(1, vm.Instr{Op: vm.OpConstant, Const: vm.Value{Kind: vm.KindString, Text: "sum = {}"}})
	c.Emit(1, vm.Instr{Op: vm.OpPrint})
	c.Emit(1, vm.Instr{Op: vm.OpEof})

	i := vm.New(c)
	if err := i.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, want := i.Output(), "sum = 5\n"; got != want {
		t.Errorf("Output() = %q, want %q", got, want)
	}
}

func TestRunDivisionByZeroReportsLine(t *testing.T) {
	c := vm.NewChunk()
	c.Emit(7, vm.Instr{Op: vm.OpConstant, Const: vm.Value{Kind: vm.KindNumber, Number: 1}})
	c.Emit(7, vm.Instr{Op: vm.OpConstant, Const: vm.Value{Kind: vm.KindNumber, Number: 0}})
	c.Emit(7, vm.Instr{Op: vm.OpDivide})
	c.Emit(7, vm.Instr{Op: vm.OpEof})

	i := vm.New(c)
	err := i.Run()
	if err == nil {
		t.Fatal("expected a division-by-zero runtime error")
	}
	rerr, ok := err.(vm.ErrRuntime)
	if !ok {
		t.Fatalf("error type = %T, want vm.ErrRuntime", err)
	}
	if rerr.Line != 7 {
		t.Errorf("Line = %d, want 7", rerr.Line)
	}
}

func TestRunJumpBudgetExceeded(t *testing.T) {
	// Mirrors the compiler's while-loop shape: cond, negate, JumpIf(exit)
	// consume, backward Jump to the top. The condition is always true so
	// the negated JumpIf never fires and the backward Jump runs every
	// iteration, forever.
	c := vm.NewChunk()
	loopStart := c.Emit(1, vm.Instr{Op: vm.OpConstant, Const: vm.Value{Kind: vm.KindBool, Bool: true}})
	c.Emit(1, vm.Instr{Op: vm.OpLogicalNot})
	jumpIdx := c.Emit(1, vm.Instr{Op: vm.OpJumpIf, Consume: true})
	backIdx := c.Emit(1, vm.Instr{Op: vm.OpJump})
	c.PatchDelta(backIdx, loopStart)
	c.PatchDelta(jumpIdx, c.Len())
	c.Emit(1, vm.Instr{Op: vm.OpEof})

	i := vm.New(c, vm.JumpBudget(5))
	err := i.Run()
	if err == nil {
		t.Fatal("expected an infinite-loop runtime error")
	}
	if !strings.Contains(err.Error(), "infinite loop detected") {
		t.Errorf("error = %q, want it to mention an infinite loop", err.Error())
	}
}

func TestDisassembleIncludesOperands(t *testing.T) {
	c := vm.NewChunk()
	c.Emit(1, vm.Instr{Op: vm.OpConstant, Const: vm.Value{Kind: vm.KindNumber, Number: 1}})
	c.Emit(1, vm.Instr{Op: vm.OpStore, Name: "x"})
	out := vm.Disassemble(c)
	if !strings.Contains(out, "store") {
		t.Errorf("Disassemble output = %q, want it to mention the store opcode", out)
	}
	if !strings.Contains(out, "x") {
		t.Errorf("Disassemble output = %q, want it to mention the operand name", out)
	}
}
