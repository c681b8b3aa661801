// runcode executes a single lesson submission through the sandbox and prints
// the outcome. It is a development tool: the MCP server is the production
// surface, but poking at policies is much faster from a shell.
//
//	runcode script.py
//	runcode -c 'print(17 % 5)' --context final_project
//	echo 'print(1+1)' | runcode
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/devanik21/lessonbox/config"
	"github.com/devanik21/lessonbox/logger"
	"github.com/devanik21/lessonbox/policy"
	"github.com/devanik21/lessonbox/sandbox"
)

var rootCmd = &cobra.Command{
	Use:   "runcode [file]",
	Short: "Run lesson code through the restricted sandbox",
	Long: `runcode - Validate and execute a lesson submission locally.

Code can be provided via:
  - File argument: runcode script.py
  - Inline flag: runcode -c 'print(1+1)'
  - Stdin: echo 'print(1+1)' | runcode`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOnce,
}

func init() {
	rootCmd.Flags().StringP("code", "c", "", "Code to execute")
	rootCmd.Flags().String("context", policy.DefaultContext, "Lesson context id")
	rootCmd.Flags().String("backend", "", "Execution backend: process, goja (default: from config)")
}

// readSource resolves the submission from flag, file argument, or stdin.
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if code, _ := cmd.Flags().GetString("code"); code != "" {
		return code, nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Sandbox.Backend = backend
	}

	log, err := logger.New("development", "warn")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	registry, err := policy.BuildRegistry(cfg.BasePolicy(), cfg.Sandbox.ContextsFile)
	if err != nil {
		return err
	}

	runner, err := sandbox.NewRunner(log, cfg.Sandbox.Backend, cfg.Sandbox.PythonBin)
	if err != nil {
		return err
	}

	box := sandbox.New(registry, sandbox.NewGovernor(runner, log), log)

	lessonContext, _ := cmd.Flags().GetString("context")
	outcome := box.Execute(context.Background(), source, lessonContext)

	if outcome.OK {
		fmt.Print(outcome.Output)
		if len(outcome.Output) > 0 && outcome.Output[len(outcome.Output)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}

	fmt.Fprintf(os.Stderr, "%s: %s\n", outcome.Category, outcome.Message)
	cmd.SilenceUsage = true
	return fmt.Errorf("execution failed")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
