// Command friscasm assembles a FRISC source file into a .p listing.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/frisc-toolchain/frisc/internal/asm"
)

func main() {
	outFile := flag.String("o", "", "Output listing path (default: input with .p extension)")
	dumpSyms := flag.Bool("syms", false, "Print the label/equate symbol table after assembling")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: friscasm [options] input.frisc\n\nAssembles FRISC source into a .p listing.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  friscasm prog.frisc\n")
		fmt.Fprintf(os.Stderr, "  friscasm -o build/prog.p -syms prog.frisc\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	a := asm.New(asm.AssemblerConfig{OutputPath: *outFile})
	msg, ok := a.Assemble(flag.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		os.Exit(1)
	}
	fmt.Println(msg)

	if *dumpSyms {
		printSymbols(a.Symbols())
	}
}

func printSymbols(syms map[string]uint32) {
	names := make([]string, 0, len(syms))
	for name := range syms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-16s 0x%08X\n", name, syms[name])
	}
}
