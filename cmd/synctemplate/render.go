package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/layout"
	"github.com/goliatone/go-synctemplate/pkg/orchestrator"
	"github.com/goliatone/go-synctemplate/pkg/overrides"
	"github.com/goliatone/go-synctemplate/pkg/renderers/tui"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

type renderFlags struct {
	instance    string
	file        string
	overrides   string
	renderer    string
	output      string
	preview     bool
	interactive bool
}

func newRenderCommand(a *app) *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render [template-id]",
		Short: "Render a template or instance with overrides applied",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateID := ""
			if len(args) == 1 {
				templateID = args[0]
			}
			if templateID == "" && flags.instance == "" && flags.file == "" {
				return errors.New("render: a template id, --instance or --file is required")
			}
			return runRender(cmd, a, templateID, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.instance, "instance", "", "stored instance id")
	f.StringVar(&flags.file, "file", "", "layout file to render instead of a stored template")
	f.StringVar(&flags.overrides, "overrides", "", "YAML or JSON file holding override entries")
	f.StringVar(&flags.renderer, "renderer", "", "renderer name (vanilla, json, tui)")
	f.StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	f.BoolVar(&flags.preview, "preview", false, "render editor placeholders")
	f.BoolVarP(&flags.interactive, "interactive", "i", false, "prompt for override values")
	return cmd
}

func runRender(cmd *cobra.Command, a *app, templateID string, flags renderFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reader, closeStore, err := openStore(a.cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	orch, err := newOrchestrator(a.cfg, reader, a.logger)
	if err != nil {
		return err
	}

	req := orchestrator.Request{
		InstanceID: flags.instance,
		TemplateID: templateID,
		Renderer:   flags.renderer,
		Preview:    flags.preview,
	}

	if flags.file != "" {
		tree, err := loadTreeFile(flags.file)
		if err != nil {
			return err
		}
		req.Tree = &tree
	}

	if flags.overrides != "" {
		entries, err := loadEntriesFile(flags.overrides)
		if err != nil {
			return err
		}
		req.Overrides = entries
	}

	if flags.interactive {
		listed, existing, err := promptContext(ctx, reader, orch, req)
		if err != nil {
			return err
		}
		driver := tui.NewSurveyDriver(cmd.ErrOrStderr())
		entries, err := tui.CollectOverrides(ctx, driver, listed, existing)
		if err != nil {
			return err
		}
		req.Overrides = entries
	}

	out, err := orch.Generate(ctx, req)
	if err != nil {
		return err
	}

	if flags.output != "" {
		if err := os.WriteFile(flags.output, out, 0o644); err != nil {
			return fmt.Errorf("render: write output: %w", err)
		}
		cmd.PrintErrf("Output written to %s\n", flags.output)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// promptContext resolves the fields to prompt for and the values already
// known for them, instance values first and file values on top.
func promptContext(ctx context.Context, reader store.Store, orch *orchestrator.Orchestrator, req orchestrator.Request) ([]fields.Listing, []overrides.Entry, error) {
	var existing []overrides.Entry
	templateID := req.TemplateID
	if req.InstanceID != "" {
		inst, err := reader.Instance(ctx, req.InstanceID)
		if err != nil {
			return nil, nil, err
		}
		existing = append(existing, inst.Overrides...)
		if templateID == "" {
			templateID = inst.TemplateID
		}
	}
	existing = append(existing, req.Overrides...)

	if req.Tree != nil {
		tree := req.Tree.Clone()
		fields.MigrateLegacy(tree)
		return fields.Listings(fields.Discover(tree)), existing, nil
	}
	listed, err := orch.Fields(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	return listed, existing, nil
}

func loadTreeFile(path string) (layout.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Tree{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	tree, err := layout.Decode(data, layout.WithYAML())
	if err != nil {
		return layout.Tree{}, fmt.Errorf("decode layout %s: %w", path, err)
	}
	return tree, nil
}

func loadEntriesFile(path string) ([]overrides.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides %s: %w", path, err)
	}
	var entries []overrides.Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	return entries, nil
}
