// Package version holds the module's release string and a small
// self-hosted banner: a Brainfuck program that prints it, run through
// the interpreter package rather than formatted with fmt, so the
// version banner is itself a (tiny) witness that the interpreter
// works.
package version

import (
	"strings"

	"github.com/bflang/bf/interp"
	"github.com/bflang/bf/parse"
	"github.com/bflang/bf/tape"
)

// String is the module's release version.
const String = "0.1.0"

// Banner returns "bf <version>\n" as printed by a Brainfuck program
// run through the interpreter. The program is generated on each call
// by walking String and emitting the byte-difference dance between
// consecutive characters rather than hand-encoded, so bumping String
// needs no hand edit here.
func Banner() string {
	src := generate("bf " + String + "\n")
	prog, err := parse.Parse([]byte(src), parse.Options{MaxSize: len(src)})
	if err != nil {
		// generate's output is always valid Brainfuck; a failure here
		// would be a bug in generate, not bad input.
		panic(err)
	}
	var out strings.Builder
	t := tape.New(false)
	if err := interp.Run(prog, t, strings.NewReader(""), &out); err != nil {
		panic(err)
	}
	return out.String()
}

// generate emits a straight-line Brainfuck program that prints s one
// byte at a time, reusing a single cell and stepping it from each
// character's value to the next's. It favors clarity over minimal
// output size.
func generate(s string) string {
	var sb strings.Builder
	prev := byte(0)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= prev {
			sb.WriteString(strings.Repeat("+", int(b-prev)))
		} else {
			sb.WriteString(strings.Repeat("-", int(prev-b)))
		}
		sb.WriteByte('.')
		prev = b
	}
	return sb.String()
}
