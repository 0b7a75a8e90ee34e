package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/paths"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize larder configuration and storage",
		Long: "Create the configuration directory with a default config.yaml (one disk\n" +
			"adapter named \"local\" rooted at the data directory), then open every\n" +
			"configured adapter once to create its storage. Existing config is kept.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	configDir, err := a.configDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, "")
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	written, err := writeConfigIfMissing(configDir, dataDir)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	sys, err := a.openSystem(cmd)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := sys.Close(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	if written {
		fmt.Fprintf(cmd.OutOrStdout(), "larder initialized: config %s, data %s\n", configDir, dataDir)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "larder already initialized: config %s\n", configDir)
	}
	return nil
}
