// Package main provides the entry point for the Grimoire server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grimoireapp/grimoire-server/internal/config"
)

// Version information, set at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Configuration flags are shared by every subcommand.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "grimoire",
		Short:         "Grimoire daily tracker server",
		Long:          "Grimoire is a personal daily tracker: a score, tags and a journal entry per day.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(flags),
		newInitDBCmd(flags),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads configuration and stamps the build version.
func loadConfig(flags *config.Flags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		return nil, err
	}
	cfg.App.Version = version
	return cfg, nil
}
