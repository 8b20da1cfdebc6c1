package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"fridgechef/internal/pantry"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		format  string
		checked []string
	)
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Render a suggestions document as text or printable HTML",
		Long:  `export reads {"suggestions": [...]} and renders the grouped shopping list.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "html" {
				return fmt.Errorf("invalid format %q: must be text or html", format)
			}
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
			suggestions, err := pantry.ValidateSuggestions(doc)
			if err != nil {
				return err
			}

			list := pantry.Group(suggestions)
			marks := pantry.NewChecked(checked)
			if format == "text" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), pantry.FormatText(list, marks))
				return err
			}
			page, err := pantry.FormatHTML(list, marks)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), page)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or html")
	cmd.Flags().StringSliceVar(&checked, "checked", nil, "Items already in the cart")
	return cmd
}
