// Command mt is the MT language driver: REPL when invoked with no
// file arguments, otherwise compile-and-run, following the teacher's
// cmd/smog/main.go entry-point shape but rebuilt on urfave/cli/v2 for
// flag parsing (--log, --verbose) per SPEC_FULL.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ramsaycarslaw/mt/internal/diag"
	"github.com/ramsaycarslaw/mt/internal/driver"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "mt",
		Usage:   "run or explore MT scripts",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "log output format: auto, text, json",
				Value: "auto",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug-level logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "compile and run one or more source files",
				ArgsUsage: "<file> [file...]",
				Action: func(c *cli.Context) error {
					return runAction(c)
				},
			},
			{
				Name:  "repl",
				Usage: "start an interactive session",
				Action: func(c *cli.Context) error {
					driver.REPL(logFrom(c))
					return nil
				},
			},
			{
				Name:      "disasm",
				Usage:     "compile a file and print its chunk disassembly without running it",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("disasm takes exactly one file", driver.ExitRuntimeError)
					}
					code := driver.Disassemble(c.Args().First(), logFrom(c))
					if code != driver.ExitOk {
						os.Exit(code)
					}
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() == 0 {
				driver.REPL(logFrom(c))
				return nil
			}
			return runAction(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(driver.ExitRuntimeError)
	}
}

func logFrom(c *cli.Context) zerolog.Logger {
	return diag.New(diag.ParseFormat(c.String("log")), c.Bool("verbose"))
}

func runAction(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("no source files given", driver.ExitRuntimeError)
	}
	code := driver.RunFiles(paths, logFrom(c))
	if code != driver.ExitOk {
		os.Exit(code)
	}
	return nil
}
