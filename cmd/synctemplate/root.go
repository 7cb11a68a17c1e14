package main

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-synctemplate/internal/config"
	"github.com/goliatone/go-synctemplate/internal/logging"
)

var (
	// Version information, set at build time.
	Version   = "dev"
	GitCommit = "unknown"
)

// app carries state shared by subcommands once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	storeDir   string

	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.storeDir != "" {
		cfg.Store.Driver = config.StoreFS
		cfg.Store.Dir = a.storeDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "synctemplate",
		Short: "Render synced layout templates with per-instance overrides",
		Long: color.CyanString(`synctemplate - reusable layout templates

Templates declare dynamic fields on their nodes. Each placement of a
template (an instance) supplies override values for those fields, and
rendering applies them to a private copy of the template.`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./synctemplate.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.storeDir, "store", "", "template bundle directory (selects the fs store)")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newRenderCommand(a))
	rootCmd.AddCommand(newFieldsCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newTokenCommand(a))

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Show version information",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "synctemplate version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
