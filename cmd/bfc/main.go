// Command bfc compiles Brainfuck source to a standalone Linux/x86-64
// executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bflang/bf/aot"
	"github.com/bflang/bf/internal/debug"
	"github.com/bflang/bf/internal/version"
	"github.com/bflang/bf/jit"
	"github.com/bflang/bf/parse"
)

// maxSourceSize bounds compiler input, matching the 1 MiB default
// documented on parse.Options.MaxSize for compiler front ends.
const maxSourceSize = 1024 * 1024

func main() {
	log.SetPrefix("bfc: ")
	log.SetFlags(0)

	showVersion := flag.Bool("v", false, "print version and exit")
	flag.BoolVar(showVersion, "version", false, "print version and exit")
	dump := flag.Bool("d", false, "dump the generated native instructions instead of linking an executable")
	flag.BoolVar(dump, "dump", false, "dump the generated native instructions instead of linking an executable")
	execute := flag.Bool("e", false, "JIT-interpret in-process instead of emitting a file")
	flag.BoolVar(execute, "execute", false, "JIT-interpret in-process instead of emitting a file")
	outfile := flag.String("o", "bf.out", "output executable path")
	flag.StringVar(outfile, "outfile", "bf.out", "output executable path")
	debugFlag := flag.Bool("debug", false, "enable diagnostic logging to stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: bfc [flags] FILE\n")
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

	if *dump {
		listing, err := jit.AMD64Backend{}.Listing(prog)
		if err != nil {
			log.Fatalf("listing: %v", err)
		}
		fmt.Print(listing)
		return
	}

	if *execute {
		j := jit.New()
		defer j.Close()
		if _, err := j.Run(prog); err != nil {
			log.Fatalf("run: %v", err)
		}
		return
	}

	elf, err := aot.Build(prog)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	if err := os.WriteFile(*outfile, elf, 0o755); err != nil {
		log.Fatalf("write %s: %v", *outfile, err)
	}
}
