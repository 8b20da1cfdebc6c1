package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fridgechef/internal/logging"
	"fridgechef/internal/pantry"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var expiringDays int
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Parse a saved image-analysis reply into ingredients",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd)
			defer logger.Sync()

			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ingredients, err := pantry.ParseIngredients(string(raw))
			if err != nil {
				logger.Debug("reply rejected", zap.String("raw", logging.Truncate(string(raw), 500)), zap.Error(err))
				return err
			}
			expiring := pantry.ExpiringSoon(ingredients, expiringDays)
			logger.Debug("reply accepted", zap.Int("ingredients", len(ingredients)), zap.Int("expiring_soon", len(expiring)))

			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"ingredients":   ingredients,
				"expiring_soon": expiring,
			})
		},
	}
	cmd.Flags().IntVar(&expiringDays, "expiring-days", pantry.ExpiringSoonDays, "Days until expiry that count as expiring soon")
	return cmd
}
