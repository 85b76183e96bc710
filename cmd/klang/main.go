// Command klang runs a klang source file (or stdin) and prints its output.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etai432/klang-playground/klang"
	"github.com/etai432/klang-playground/vm"
)

func main() {
	jumpBudget := flag.Int("jump-budget", 10000, "abort execution after this many jumps (infinite-loop safety net)")
	flag.Parse()

	var src []byte
	var err error
	if args := flag.Args(); len(args) > 0 {
		src, err = os.ReadFile(args[0])
	} else {
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	output := klang.RunWithOptions(string(src), vm.JumpBudget(*jumpBudget))
	fmt.Print(output)
}
