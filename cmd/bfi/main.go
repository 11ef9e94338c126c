// Command bfi interprets Brainfuck source files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bflang/bf/internal/debug"
	"github.com/bflang/bf/internal/version"
	"github.com/bflang/bf/interp"
	"github.com/bflang/bf/ir"
	"github.com/bflang/bf/parse"
	"github.com/bflang/bf/tape"
)

// maxSourceSize bounds interpreter input, matching the 8 MiB default
// documented on parse.Options.MaxSize for the interpreter mode.
const maxSourceSize = 8 * 1024 * 1024

func main() {
	log.SetPrefix("bfi: ")
	log.SetFlags(0)

	showVersion := flag.Bool("v", false, "print version and exit")
	flag.BoolVar(showVersion, "version", false, "print version and exit")
	printAST := flag.Bool("p", false, "print the parsed IR instead of running it")
	flag.BoolVar(printAST, "print-ast", false, "print the parsed IR instead of running it")
	strict := flag.Bool("s", false, "trap on tape/cell overflow instead of wrapping")
	flag.BoolVar(strict, "strict", false, "trap on tape/cell overflow instead of wrapping")
	debugFlag := flag.Bool("debug", false, "enable diagnostic logging to stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: bfi [flags] FILE\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debugFlag {
		debug.Enable()
	}

	if *showVersion {
		fmt.Print(version.Banner())
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("read %s: %v", flag.Arg(0), err)
	}

	prog, err := parse.Parse(src, parse.Options{MaxSize: maxSourceSize})
	if err != nil {
		log.Fatalf("parse: %v", err)
	}

	if *printAST {
		if err := ir.Dump(os.Stdout, prog); err != nil {
			log.Fatalf("dump: %v", err)
		}
		return
	}

	t := tape.New(*strict)
	if err := interp.Run(prog, t, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("run: %v", err)
	}
}
