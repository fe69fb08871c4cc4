package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Promethee/internal/document"
	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
	"github.com/MikeSquared-Agency/Promethee/internal/runner"
)

var computeFlags struct {
	file    string
	workers int
	indent  bool
}

var computeCmd = &cobra.Command{
	Use:   "compute <operation>",
	Short: "Evaluate a problem document and print the result as JSON",
	Long: `Reads a YAML or JSON problem document and runs one operation on it:
` + operationList() + `.

Configuration errors are all reported at once and the command exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompute,
}

func init() {
	f := computeCmd.Flags()
	f.StringVarP(&computeFlags.file, "file", "f", "-", "problem document, - for stdin")
	f.IntVar(&computeFlags.workers, "workers", 0, "parallel pair evaluators (0 = GOMAXPROCS)")
	f.BoolVar(&computeFlags.indent, "indent", true, "indent JSON output")
}

func operationList() string {
	ops := make([]string, len(runner.Operations))
	for i, op := range runner.Operations {
		ops[i] = string(op)
	}
	return strings.Join(ops, ", ")
}

func runCompute(cmd *cobra.Command, args []string) error {
	op, err := runner.ParseOperation(args[0])
	if err != nil {
		return fmt.Errorf("%w (one of: %s)", err, operationList())
	}

	data, err := readInput(cmd.InOrStdin(), computeFlags.file)
	if err != nil {
		return err
	}
	p, err := document.Decode(data)
	if err != nil {
		return err
	}

	exec := runner.NewExecutor(promethee.NewEngine(promethee.WithWorkers(computeFlags.workers)))
	res, err := exec.Execute(cmd.Context(), op, p)
	if err != nil {
		if msgs := runner.Problems(err); len(msgs) > 1 {
			errOut := cmd.ErrOrStderr()
			for _, m := range msgs {
				fmt.Fprintf(errOut, "  - %s\n", m)
			}
			return fmt.Errorf("%s: %d problems found", op, len(msgs))
		}
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if computeFlags.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem: %w", err)
	}
	return data, nil
}
