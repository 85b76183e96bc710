package vm

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// nativeArity maps a std:: function name to its required argument count.
// Declared up front so NativeCall can check arity before dispatch and
// report "expected N, got M" the way spec.md's boundaries table requires.
var nativeArity = map[string]int{
	"sin": 1, "cos": 1, "tan": 1, "sqrt": 1, "pow": 2, "ln": 1, "log": 1,
	"round": 1, "abs": 1, "min": 2, "max": 2, "pi": 0,
	"random": 0, "range": 2, "randbool": 0,
	"time": 0, "sleep": 1,
	"get": 2, "set": 3, "remove": 2, "insert": 3, "len": 1,
}

func (i *Instance) callNative(name string, args []Value) (Value, error) {
	want, ok := nativeArity[name]
	if !ok {
		return Value{}, errors.Errorf("unknown native function 'std::%s'", name)
	}
	if len(args) != want {
		return Value{}, errors.Errorf("std::%s expects %d argument(s), got %d", name, want, len(args))
	}

	switch name {
	case "sin":
		return numberArg(name, args, 0, math.Sin)
	case "cos":
		return numberArg(name, args, 0, math.Cos)
	case "tan":
		return numberArg(name, args, 0, math.Tan)
	case "sqrt":
		return numberArg(name, args, 0, math.Sqrt)
	case "ln":
		return numberArg(name, args, 0, math.Log)
	case "log":
		return numberArg(name, args, 0, math.Log10)
	case "round":
		return numberArg(name, args, 0, math.Round)
	case "abs":
		return numberArg(name, args, 0, math.Abs)
	case "pow":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return numberVal(math.Pow(a, b)), nil
	case "min":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return numberVal(math.Min(a, b)), nil
	case "max":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return numberVal(math.Max(a, b)), nil
	case "pi":
		return numberVal(math.Pi), nil

	case "random":
		return numberVal(i.rng.Float64()), nil
	case "range":
		lo, hi, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		if lo >= hi {
			return Value{}, errors.Errorf("std::range requires lo < hi, got %v and %v", lo, hi)
		}
		return numberVal(lo + i.rng.Float64()*(hi-lo)), nil
	case "randbool":
		return boolVal(i.rng.Intn(2) == 1), nil

	case "time":
		return numberVal(float64(time.Now().Unix())), nil
	case "sleep":
		secs, err := numberArgRaw(name, args, 0)
		if err != nil {
			return Value{}, err
		}
		if secs < 0 {
			return Value{}, errors.Errorf("std::sleep requires a non-negative duration, got %v", secs)
		}
		i.sleep(time.Duration(secs * float64(time.Second)))
		return noneVal(), nil

	case "get":
		return i.nativeGet(args)
	case "set":
		return i.nativeSet(args)
	case "remove":
		return i.nativeRemove(args)
	case "insert":
		return i.nativeInsert(args)
	case "len":
		return i.nativeLen(args)
	}
	return Value{}, errors.Errorf("unknown native function 'std::%s'", name)
}

func numberArg(name string, args []Value, idx int, f func(float64) float64) (Value, error) {
	n, err := numberArgRaw(name, args, idx)
	if err != nil {
		return Value{}, err
	}
	return numberVal(f(n)), nil
}

func numberArgRaw(name string, args []Value, idx int) (float64, error) {
	a := args[idx]
	if a.Kind != KindNumber {
		return 0, errors.Errorf("std::%s requires a number argument", name)
	}
	return a.Number, nil
}

func twoNumbers(name string, args []Value) (float64, float64, error) {
	a, err := numberArgRaw(name, args, 0)
	if err != nil {
		return 0, 0, err
	}
	b, err := numberArgRaw(name, args, 1)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func vecIndex(name string, args []Value, vecIdx, indexIdx int) ([]Value, int, error) {
	v := args[vecIdx]
	if v.Kind != KindVec {
		return nil, 0, errors.Errorf("std::%s requires a vector argument", name)
	}
	idxVal := args[indexIdx]
	if idxVal.Kind != KindNumber {
		return nil, 0, errors.Errorf("std::%s requires a numeric index", name)
	}
	idx := int(idxVal.Number)
	if idx < 0 || idx >= len(v.Elements) {
		return nil, 0, errors.Errorf("std::%s index %d out of bounds for a vector of length %d", name, idx, len(v.Elements))
	}
	return v.Elements, idx, nil
}

// nativeGet returns the element at the given index. args are already deep
// copies (see ast.Value.Copy), so the caller's bound vector is untouched.
func (i *Instance) nativeGet(args []Value) (Value, error) {
	elems, idx, err := vecIndex("get", args, 0, 1)
	if err != nil {
		return Value{}, err
	}
	return elems[idx], nil
}

// nativeSet returns a new vector with index idx replaced; it does not
// mutate the vector it was handed, per spec.md 9's preserved Open Question.
func (i *Instance) nativeSet(args []Value) (Value, error) {
	elems, idx, err := vecIndex("set", args, 0, 1)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(elems))
	copy(out, elems)
	out[idx] = args[2]
	return vecVal(out), nil
}

func (i *Instance) nativeRemove(args []Value) (Value, error) {
	elems, idx, err := vecIndex("remove", args, 0, 1)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, 0, len(elems)-1)
	out = append(out, elems[:idx]...)
	out = append(out, elems[idx+1:]...)
	return vecVal(out), nil
}

func (i *Instance) nativeInsert(args []Value) (Value, error) {
	v := args[0]
	if v.Kind != KindVec {
		return Value{}, errors.Errorf("std::insert requires a vector argument")
	}
	idxVal := args[1]
	if idxVal.Kind != KindNumber {
		return Value{}, errors.Errorf("std::insert requires a numeric index")
	}
	idx := int(idxVal.Number)
	if idx < 0 || idx > len(v.Elements) {
		return Value{}, errors.Errorf("std::insert index %d out of bounds for a vector of length %d", idx, len(v.Elements))
	}
	out := make([]Value, 0, len(v.Elements)+1)
	out = append(out, v.Elements[:idx]...)
	out = append(out, args[2])
	out = append(out, v.Elements[idx:]...)
	return vecVal(out), nil
}

func (i *Instance) nativeLen(args []Value) (Value, error) {
	v := args[0]
	if v.Kind != KindVec {
		return Value{}, errors.Errorf("std::len requires a vector argument")
	}
	return numberVal(float64(len(v.Elements))), nil
}
