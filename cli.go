package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the booklist command line. Running it without
// subcommand opens the interactive books list.
func NewRootCommand() *cobra.Command {
	opts := Options{}

	runUI := func(cmd *cobra.Command, _ []string) error {
		app, err := NewApp(opts)
		if err != nil {
			return fmt.Errorf("application failed to initialize: %w", err)
		}
		return app.RunUI(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	rootCmd := &cobra.Command{
		Use:          "booklist",
		Short:        "Manage a remote list of books from the terminal",
		SilenceUsage: true,
		RunE:         runUI,
		Version:      version(),
	}
	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", DefaultConfigFile, "path of the yaml configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env", DefaultEnvFile, "path of the optional environment file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "ui",
		Short: "Open the interactive books list (default command)",
		RunE:  runUI,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stub",
		Short: "Serve a local books api for development and tests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Console = true
			app, err := NewApp(opts)
			if err != nil {
				return fmt.Errorf("application failed to initialize: %w", err)
			}
			return app.RunStub()
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build details",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version())
		},
	})

	return rootCmd
}

func version() string {
	tag, commit, built := GitTag, GitCommit, BuildTime
	if tag == "" {
		tag = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s (commit %s, built %s)", tag, commit, built)
}
