package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

func newFieldsCommand(a *app) *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "fields [template-id]",
		Short: "List the dynamic fields a template declares",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var listed []fields.Listing
			switch {
			case file != "":
				tree, err := loadTreeFile(file)
				if err != nil {
					return err
				}
				fields.MigrateLegacy(tree)
				listed = fields.Listings(fields.Discover(tree))
			case len(args) == 1:
				reader, closeStore, err := openStore(a.cfg.Store)
				if err != nil {
					return err
				}
				defer closeStore()
				orch, err := newOrchestrator(a.cfg, reader, a.logger)
				if err != nil {
					return err
				}
				listed, err = orch.Fields(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			default:
				return errors.New("fields: a template id or --file is required")
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(listed)
			}
			printListing(cmd, listed)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "layout file to inspect instead of a stored template")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the listing as JSON")
	return cmd
}

func printListing(cmd *cobra.Command, listed []fields.Listing) {
	out := cmd.OutOrStdout()
	if len(listed) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No dynamic fields declared.")
		return
	}
	idColor := color.New(color.FgCyan, color.Bold)
	typeColor := color.New(color.FgGreen)
	for _, item := range listed {
		idColor.Fprintf(out, "%-24s", item.FieldID)
		typeColor.Fprintf(out, " %-9s", item.Type)
		fmt.Fprintf(out, " %s\n", item.Label)
	}
}
