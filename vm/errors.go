package vm

import (
	"fmt"

	"github.com/etai432/klang-playground/kerr"
)

// ErrRuntime is a single klang runtime failure: type mismatches, stack
// underflow, division by zero, an out-of-bounds jump, unknown functions,
// arity mismatches, non-vector iteration, or the jump budget being
// exceeded. It is attributed to the source line of the instruction that
// raised it.
type ErrRuntime struct {
	Line int
	Msg  string
}

func (e ErrRuntime) Error() string {
	return kerr.Format(kerr.Runtime, e.Line, e.Msg)
}

func (i *Instance) errorf(format string, args ...interface{}) error {
	return ErrRuntime{Line: i.currentLine(), Msg: fmt.Sprintf(format, args...)}
}

func (i *Instance) currentLine() int {
	if i.index >= 0 && i.index < len(i.chunk.Lines) {
		return i.chunk.Lines[i.index]
	}
	return 0
}
