package driver

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/ramsaycarslaw/mt/internal/compiler"
	"github.com/ramsaycarslaw/mt/internal/natives"
	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// REPL runs an interactive read-eval-print loop, grounded on the
// teacher's runREPL/evalREPL split (cmd/smog/main.go): a persistent VM
// so globals survive between inputs, one fresh Compiler call per line
// since MT's compiler has no incremental-compile entry point the way
// the teacher's Smalltalk compiler does.
func REPL(log zerolog.Logger) {
	banner := "mt> "
	if isatty.IsTerminal(os.Stdout.Fd()) {
		banner = color.New(color.FgCyan, color.Bold).Sprint("mt> ")
	}

	strs := value.NewStrings()
	m := vm.New(strs, os.Stdout, log)
	natives.Register(m, strs, log)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("mt REPL — :quit to exit")

	for {
		fmt.Print(banner)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case ":quit", ":exit":
			return
		}

		fn, err := compiler.Compile(line, strs)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if _, err := m.Interpret(fn); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
