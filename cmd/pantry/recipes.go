package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fridgechef/internal/logging"
	"fridgechef/internal/recipe"
)

func newRecipesCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "recipes [file]",
		Short: "Parse a saved recipe-generation reply",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd)
			defer logger.Sync()

			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			recipes, err := recipe.ParseRecipes(string(raw))
			if err != nil {
				logger.Debug("reply rejected", zap.String("raw", logging.Truncate(string(raw), 500)), zap.Error(err))
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"recipes": recipes})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "NAME\tDIFFICULTY\tPREP\tCOOK\tMISSING")
			for _, r := range recipes {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d\n", r.Name, r.Difficulty, r.PrepTime, r.CookTime, r.MissingCount())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the recipes as JSON")
	return cmd
}
