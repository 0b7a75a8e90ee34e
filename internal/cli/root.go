// Package cli implements the larder command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/telemetry"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app carries the state shared by one command tree.
type app struct {
	flags rootFlags
}

// NewRootCmd creates the top-level "larder" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "larder",
		Short: "Inspect and manage files across persistence adapters",
		Long: "Larder stores serialized documents on prioritized adapters (disk, sqlite,\n" +
			"NATS object stores, read-only bundles) and moves them between adapters.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env LARDER_CONFIG_DIR)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory used by init (env LARDER_DATA_DIR)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log every storage operation to stderr")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newAdaptersCmd(),
		a.newListCmd(),
		a.newCatCmd(),
		a.newPutCmd(),
		a.newMoveCmd(),
		a.newCopyCmd(),
		a.newDeleteCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "larder")
	if err != nil {
		fmt.Fprintln(os.Stderr, "telemetry:", err)
	}

	root := NewRootCmd()
	err = root.ExecuteContext(ctx)
	if serr := shutdown(ctx); serr != nil {
		fmt.Fprintln(os.Stderr, "telemetry:", serr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps an error to the process exit status. Failures caused by
// the command line or the stored data are user errors; medium and
// encoding failures are system errors.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrIO), errors.Is(err, types.ErrSerialization):
		return exitSysError
	default:
		return exitUserError
	}
}

// logger returns the logger for storage events.
func (a *app) logger(cmd *cobra.Command) *slog.Logger {
	if !a.flags.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}
