package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders a chunk as one line per instruction, prefixed with
// its index and source line. It has no effect on Run's observable
// behavior; it exists purely as a debugging aid, the same role
// asm.Disassemble plays for ngaro images.
func Disassemble(c *Chunk) string {
	var b strings.Builder
	for idx, instr := range c.Code {
		fmt.Fprintf(&b, "%4d  line %-4d %s", idx, c.Lines[idx], instr.Op)
		switch instr.Op {
		case OpConstant:
			fmt.Fprintf(&b, " %s", instr.Const.String())
		case OpStore, OpLoad, OpCall:
			fmt.Fprintf(&b, " %s", instr.Name)
		case OpNativeCall:
			fmt.Fprintf(&b, " %s/%d", instr.Name, instr.Argc)
		case OpFn:
			fmt.Fprintf(&b, " %s(%s)", instr.Name, strings.Join(instr.Params, ", "))
		case OpJump:
			fmt.Fprintf(&b, " %+d", instr.Delta)
		case OpJumpIf:
			fmt.Fprintf(&b, " %+d consume=%v", instr.Delta, instr.Consume)
		case OpIterable:
			fmt.Fprintf(&b, " %d", instr.Argc)
		case OpRange:
			fmt.Fprintf(&b, " has_step=%v", instr.HasStep)
		case OpReturn:
			fmt.Fprintf(&b, " has_value=%v", instr.HasValue)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
