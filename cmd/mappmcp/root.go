package main

import (
	"fmt"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/app"
	"github.com/aussiebroadwan/mappmcp/pkg/cryptox"
	"github.com/spf13/cobra"
)

// newRootCmd builds the CLI. Running it without a subcommand serves.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mappmcp",
		Short: "MCP gateway for the Mapp Intelligence analytics API",
		Long: `mappmcp exposes the Mapp Intelligence analytics API to MCP clients.
Each user links their own Mapp API credentials, which are stored encrypted
and exchanged for upstream tokens on demand.

All configuration is read from the environment.`,
		Version:      app.BuildVersion,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.SetVersionTemplate(`{{printf "mappmcp version %s\n" .Version}}`)

	root.AddCommand(newServeCmd(), newKeygenCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new CREDENTIAL_ENCRYPTION_KEY",
		Long: `Generates 32 random bytes and prints them as 64 hex characters, the
format CREDENTIAL_ENCRYPTION_KEY expects. Changing the key makes every
stored credential unreadable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := cryptox.GenerateHexKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mappmcp",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mappmcp version %s\n", app.BuildVersion)
		},
	}
}
