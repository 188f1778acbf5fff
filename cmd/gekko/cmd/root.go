// Package cmd implements Gekko's command-line driver: a persistent REPL
// when invoked with no arguments, a one-shot file run when given exactly
// one path, and a usage message otherwise. This mirrors the teacher
// driver's cobra root command shape, stripped of the unit/module-system
// and static-type-check machinery Gekko's Non-goals exclude.
package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dimetcm/gekko/internal/config"
	"github.com/dimetcm/gekko/internal/runner"
	"github.com/dimetcm/gekko/internal/style"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "gekko [script]",
	Short:         "Gekko is a small tree-walking scripting language interpreter",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("gekko: %w", err)
		}
		if !c.Flags().Changed("verbose") {
			verbose = cfg.Verbose
		}
		if cfg.NoColor {
			style.SetEnabled(false)
		}

		switch len(args) {
		case 0:
			runREPL()
			return nil
		case 1:
			return runFile(args[0])
		default:
			return c.Usage()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace instance construction to stderr")
}

// Execute runs the root command; it is the sole entry point main() calls.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.Render(style.Error, err.Error()))
		os.Exit(1)
	}
}

// runFile reads and runs path once. A reported runtime error still exits
// 0, per §6: only a process/IO failure earns a non-zero exit code.
func runFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("gekko: %w", err)
	}
	if verbose {
		runner.RunVerbose(string(source), os.Stdout, os.Stderr)
	} else {
		runner.Run(string(source), os.Stdout, os.Stderr)
	}
	return nil
}

// runREPL reads one line at a time, scanning/parsing/resolving/evaluating
// each against the same persistent global environment, so a `var` on one
// line is visible on the next.
func runREPL() {
	var session *runner.Session
	if verbose {
		session = runner.NewVerboseSession(os.Stdout, os.Stderr)
	} else {
		session = runner.NewSession(os.Stdout)
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, style.Render(style.Prompt, "> "))
		if !scanner.Scan() {
			return
		}
		session.Run(scanner.Text(), os.Stderr)
	}
}
