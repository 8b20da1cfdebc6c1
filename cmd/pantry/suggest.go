package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fridgechef/internal/pantry"
)

func newSuggestCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "suggest [file]",
		Short: "Build a shopping list from an ingredients document",
		Long:  `suggest reads {"ingredients": [...]} and prints the rule-based shopping list.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd)
			defer logger.Sync()

			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := pantry.DecodeDocument(bytes.NewReader(data))
			if err != nil {
				return err
			}
			ingredients, err := pantry.ValidateIngredients(doc)
			if err != nil {
				return err
			}

			list := pantry.BuildShoppingList(ingredients)
			logger.Debug("shopping list built", zap.Int("ingredients", len(ingredients)), zap.Int("items", list.TotalItems()))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"suggestions": list.Flatten(),
					"list":        list,
					"total_items": list.TotalItems(),
				})
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), pantry.FormatText(list, nil))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON")
	return cmd
}
