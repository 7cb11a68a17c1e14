package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-synctemplate/pkg/store"
)

func newImportCommand(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a template bundle directory into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if from == "" {
				return errors.New("import: --from is required")
			}
			src, err := store.LoadFS(os.DirFS(from))
			if err != nil {
				return err
			}

			dst, closeStore, err := openStore(a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			templates, instances, err := src.Copy(cmd.Context(), dst)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(),
				"Imported %d templates and %d instances\n", templates, instances)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "bundle directory holding templates/ and instances/")
	return cmd
}
