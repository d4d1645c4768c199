// Package driver wires the lexer/compiler/VM triad into runnable
// programs: single-file and multi-file execution, the literate-mode
// source filter, use-directive resolution, and the REPL, mirroring
// the teacher's cmd/smog/main.go entry points at one layer of
// indirection so cmd/mt stays a thin CLI shell.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ramsaycarslaw/mt/internal/bytecode"
	"github.com/ramsaycarslaw/mt/internal/compiler"
	"github.com/ramsaycarslaw/mt/internal/natives"
	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// Exit codes match spec.md §6's Lox-family convention.
const (
	ExitOk           = 0
	ExitCompileError = 65
	ExitRuntimeError = 70
)

// RunFiles loads one or more source files, concatenating multiple
// files in reverse order into a single scratch buffer per spec.md §6,
// then compiles and runs the result. It returns the process exit code
// to use.
func RunFiles(paths []string, log zerolog.Logger) int {
	source, dir, err := loadAndConcat(paths)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitRuntimeError
	}
	return Run(source, dir, log)
}

func loadAndConcat(paths []string) (string, string, error) {
	if len(paths) == 0 {
		return "", "", errors.New("no source files given")
	}
	var parts []string
	for i := len(paths) - 1; i >= 0; i-- {
		data, err := os.ReadFile(paths[i])
		if err != nil {
			return "", "", errors.Wrapf(err, "reading %s", paths[i])
		}
		text := string(data)
		if IsLiterate(paths[i]) {
			text = Literate(text)
		}
		parts = append(parts, text)
	}
	dir := filepath.Dir(paths[0])
	return strings.Join(parts, "\n"), dir, nil
}

// Run compiles and executes a single source blob resolved relative to
// dir (for use-directive resolution), writing `print` output to stdout.
func Run(source, dir string, log zerolog.Logger) int {
	resolved, err := ResolveUse(source, dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrap(err, "resolving use directives"))
		return ExitRuntimeError
	}

	strs := value.NewStrings()
	fn, err := compiler.Compile(resolved, strs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitCompileError
	}

	m := vm.New(strs, os.Stdout, log)
	natives.Register(m, strs, log)

	result, err := m.Interpret(fn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	switch result {
	case vm.Ok:
		return ExitOk
	default:
		return ExitRuntimeError
	}
}

// Disassemble compiles a single file and prints its chunk's disassembly
// to stdout without running it, mirroring the teacher's cmd/smog
// disassembleFile command.
func Disassemble(path string, log zerolog.Logger) int {
	source, dir, err := loadAndConcat([]string{path})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitRuntimeError
	}
	resolved, err := ResolveUse(source, dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrap(err, "resolving use directives"))
		return ExitRuntimeError
	}

	strs := value.NewStrings()
	fn, err := compiler.Compile(resolved, strs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitCompileError
	}

	chunk := fn.Chunk.(*bytecode.Chunk)
	fmt.Print(chunk.Disassemble(filepath.Base(path)))
	return ExitOk
}
