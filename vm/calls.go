package vm

// harvestFn captures a function declaration the first (and only) time its
// Fn opcode is reached: the body between it and its matching EndFn is
// copied out into the function table, and execution skips straight past
// the whole block without running any of it (parameters are bound, and the
// body scope opened, only when the function is actually called).
func (i *Instance) harvestFn(instr Instr) {
	end := i.index + 1
	depth := 0
	for end < len(i.chunk.Code) {
		op := i.chunk.Code[end].Op
		if op == OpEndFn && depth == 0 {
			break
		}
		// For opens a frame that the loop's own EndScope closes.
		if op == OpScope || op == OpFor {
			depth++
		} else if op == OpEndScope {
			depth--
		}
		end++
	}
	body := make([]Instr, end-(i.index+1))
	copy(body, i.chunk.Code[i.index+1:end])
	lines := make([]int, end-(i.index+1))
	copy(lines, i.chunk.Lines[i.index+1:end])

	i.functions[instr.Name] = &fnEntry{Params: instr.Params, Body: body, Lines: lines}
	i.index = end + 1 // past the EndFn sentinel
}

// call splices the named function's harvested body into the chunk right
// after this Call instruction, binds its parameters in a fresh scope
// chained off the caller's, and resumes execution into the spliced body.
// The chunk grows by one copy of the body per call (see spec.md 9's design
// note on splice-inlining); recursive functions grow it once per recursion
// level. Each active call keeps only its return address and the caller's
// scope, on i.returns.
func (i *Instance) call(instr Instr) error {
	fn, ok := i.functions[instr.Name]
	if !ok {
		return i.errorf("unknown function '%s'", instr.Name)
	}
	oldLeaf := i.leaf
	args := make([]Value, len(fn.Params))
	for k := len(fn.Params) - 1; k >= 0; k-- {
		v, ok := oldLeaf.pop()
		if !ok {
			return i.errorf("cannot pop an empty stack")
		}
		args[k] = v.Copy()
	}
	newFrame := newScope(oldLeaf)
	for k, p := range fn.Params {
		newFrame.storeLocal(p, args[k])
	}

	line := i.currentLine()
	spliceAt := i.index + 1
	body := make([]Instr, len(fn.Body), len(fn.Body)+1)
	copy(body, fn.Body)
	lines := make([]int, len(fn.Lines), len(fn.Lines)+1)
	copy(lines, fn.Lines)
	body = append(body, Instr{Op: OpEndFn})
	lines = append(lines, line)
	i.chunk.Splice(spliceAt, body, lines)
	i.shiftReturnsAfterSplice(spliceAt, len(body))

	i.returns = append(i.returns, returnFrame{resumeIndex: spliceAt + len(body), callerScope: oldLeaf})
	i.leaf = newFrame
	i.index = spliceAt
	return nil
}

// shiftReturnsAfterSplice fixes up every outstanding return address recorded
// by an enclosing Call: Splice shifts the chunk's own Code/Lines but knows
// nothing about absolute indices already stashed in i.returns, so a nested
// or recursive call's splice would otherwise leave its caller's resumeIndex
// pointing at whatever instruction happens to have slid into its old slot.
func (i *Instance) shiftReturnsAfterSplice(spliceAt, grew int) {
	for idx := range i.returns {
		if i.returns[idx].resumeIndex >= spliceAt {
			i.returns[idx].resumeIndex += grew
		}
	}
}

// ret implements Return: it unwinds directly to the scope the caller was in
// before the Call, regardless of how many Scope/EndScope blocks are still
// open inside the function body, and resumes after the spliced EndFn.
func (i *Instance) ret(instr Instr) error {
	var value Value
	if instr.HasValue {
		v, ok := i.leaf.pop()
		if !ok {
			return i.errorf("cannot pop an empty stack")
		}
		value = v
	}
	if len(i.returns) == 0 {
		return i.errorf("return used outside of a function call")
	}
	rf := i.returns[len(i.returns)-1]
	i.returns = i.returns[:len(i.returns)-1]
	i.leaf = rf.callerScope
	i.index = rf.resumeIndex
	if instr.HasValue {
		i.leaf.push(value)
	}
	return nil
}

// endFn is reached when a function body falls off its end without an
// explicit return: it performs the same unwind as ret, minus a value.
func (i *Instance) endFn() {
	if len(i.returns) == 0 {
		i.index++
		return
	}
	rf := i.returns[len(i.returns)-1]
	i.returns = i.returns[:len(i.returns)-1]
	i.leaf = rf.callerScope
	i.index = rf.resumeIndex
}

func (i *Instance) nativeCall(instr Instr) error {
	n := instr.Argc
	args := make([]Value, n)
	for k := n - 1; k >= 0; k-- {
		v, ok := i.leaf.pop()
		if !ok {
			return i.errorf("cannot pop an empty stack")
		}
		args[k] = v.Copy()
	}
	result, err := i.callNative(instr.Name, args)
	if err != nil {
		return ErrRuntime{Line: i.currentLine(), Msg: err.Error()}
	}
	i.leaf.push(result)
	return nil
}
