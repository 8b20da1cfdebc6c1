package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fridgechef/internal/logging"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "pantry",
		Short:         "pantry runs the fridge analysis pipeline over saved model replies",
		Long:          "pantry parses and validates saved model replies, builds shopping lists and exports them, without calling a model.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline details to stderr")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newSuggestCmd(opts),
		newRecipesCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// logger writes to the command's stderr; quiet unless --verbose.
func (o *rootOptions) logger(cmd *cobra.Command) *zap.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger, err := logging.NewWithWriter(level, "development", cmd.ErrOrStderr())
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// readInput reads the file named by args, or stdin when it is absent or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
