package vm

import (
	"bytes"
	"io"
	"math/rand"
	"time"
)

const defaultJumpBudget = 10000

// Option configures an Instance, mirroring the teacher's functional-options
// idiom (vm.DataSize, vm.Output, ...) for VM construction.
type Option func(*Instance)

// JumpBudget overrides the number of jumps (Jump/JumpIf actually taken) an
// execution may perform before it is aborted as an infinite loop. The
// default is 10000, per spec.md 4.4; spec.md's design notes call this out
// as something an embedder may reasonably want to raise.
func JumpBudget(n int) Option {
	return func(i *Instance) { i.jumpBudget = n }
}

// Stdout redirects Print's output. The default is an internal buffer
// retrievable via Instance.Output after Run returns.
func Stdout(w io.Writer) Option {
	return func(i *Instance) { i.stdout = w }
}

// Seed seeds the native random-number generator deterministically, for
// reproducible tests of programs that call std::random/range/randbool.
func Seed(seed int64) Option {
	return func(i *Instance) { i.rng = rand.New(rand.NewSource(seed)) }
}

// sleeper lets tests swap out std::sleep's real time.Sleep for something
// that doesn't actually block.
func sleeper(f func(time.Duration)) Option {
	return func(i *Instance) { i.sleepFunc = f }
}

// Instance is one klang VM execution: a private value-stack scope chain, a
// function table and a jump-budget counter. Every klang.Run call builds and
// discards its own Instance; there is no shared mutable state between runs.
type Instance struct {
	chunk *Chunk
	index int

	leaf *scope

	functions map[string]*fnEntry
	returns   []returnFrame

	jumpsTaken int
	jumpBudget int

	stdout    io.Writer
	buf       *bytes.Buffer
	rng       *rand.Rand
	sleepFunc func(time.Duration)
}

// New creates a VM instance ready to run the given chunk.
func New(chunk *Chunk, opts ...Option) *Instance {
	buf := &bytes.Buffer{}
	i := &Instance{
		chunk:      chunk,
		leaf:       newScope(nil),
		functions:  make(map[string]*fnEntry),
		jumpBudget: defaultJumpBudget,
		stdout:     buf,
		buf:        buf,
		rng:        rand.New(rand.NewSource(1)),
		sleepFunc:  time.Sleep,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Instance) sleep(d time.Duration) { i.sleepFunc(d) }

// Output returns everything written to the default internal buffer. If the
// instance was configured with Stdout, this returns an empty string.
func (i *Instance) Output() string {
	if i.buf == nil {
		return ""
	}
	return i.buf.String()
}
