// Command bfjit compiles Brainfuck source to native code and runs it
// in-process.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bflang/bf/internal/debug"
	"github.com/bflang/bf/internal/version"
	"github.com/bflang/bf/jit"
	"github.com/bflang/bf/parse"
)

// maxSourceSize bounds compiler input, matching the 1 MiB default
// documented on parse.Options.MaxSize for compiler front ends.
const maxSourceSize = 1024 * 1024

func main() {
	log.SetPrefix("bfjit: ")
	log.SetFlags(0)

	showVersion := flag.Bool("v", false, "print version and exit")
	flag.BoolVar(showVersion, "version", false, "print version and exit")
	printListing := flag.Bool("p", false, "print the generated native instructions instead of running them")
	flag.BoolVar(printListing, "print", false, "print the generated native instructions instead of running them")
	debugFlag := flag.Bool("debug", false, "enable diagnostic logging to stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: bfjit [flags] FILE\n")
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

	j := jit.New()
	defer j.Close()

	if *printListing {
		listing, err := j.Listing(prog)
		if err != nil {
			log.Fatalf("listing: %v", err)
		}
		fmt.Print(listing)
		return
	}

	if _, err := j.Run(prog); err != nil {
		log.Fatalf("run: %v", err)
	}
}
