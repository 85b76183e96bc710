// Package klang is the single driver entry point for the scanner → parser
// → compiler → VM pipeline: it turns klang source text into its textual
// output, or a single formatted error string.
package klang

import (
	"github.com/pkg/errors"

	"github.com/etai432/klang-playground/compiler"
	"github.com/etai432/klang-playground/kerr"
	"github.com/etai432/klang-playground/parser"
	"github.com/etai432/klang-playground/scanner"
	"github.com/etai432/klang-playground/vm"
)

// Run compiles and executes source, returning the concatenation of every
// print's output, or on any failure the formatted
// "[<Kind>] at line <N>: <message>" error string. This is klang's fixed,
// unconfigurable entry point (spec.md 6.1); RunWithOptions is the variant
// embedders and tests use to bound the VM's jump budget or seed its RNG.
func Run(source string) string {
	return RunWithOptions(source)
}

// RunWithOptions is Run with the VM's functional options exposed, e.g.
// vm.JumpBudget or vm.Seed for deterministic tests.
func RunWithOptions(source string, opts ...vm.Option) (output string) {
	defer func() {
		if r := recover(); r != nil {
			output = kerr.Format(kerr.Runtime, 0, errors.Errorf("%v", r).Error())
		}
	}()

	tokens, err := scanner.Scan(source)
	if err != nil {
		return err.Error()
	}
	stmts, err := parser.Parse(tokens)
	if err != nil {
		return err.Error()
	}
	chunk, err := compiler.Compile(stmts)
	if err != nil {
		return kerr.Format(kerr.Runtime, 0, err.Error())
	}

	instance := vm.New(chunk, opts...)
	if err := instance.Run(); err != nil {
		return err.Error()
	}
	return instance.Output()
}
