package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// closeWith closes sys and joins any close error onto err.
func closeWith(sys *larder.System, err error) error {
	return errors.Join(err, sys.Close())
}

func (a *app) newListCmd() *cobra.Command {
	var adapter, prefix string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List stored files on every adapter",
		Long: "List every file on every registered adapter, enabled or not, in adapter\n" +
			"priority order. The same path on two adapters is listed twice.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			sys, err := a.openSystem(cmd)
			if err != nil {
				return err
			}
			defer func() { err = closeWith(sys, err) }()

			files, err := sys.List(cmd.Context(), func(p string) bool {
				return strings.HasPrefix(p, prefix)
			})
			if err != nil {
				return err
			}

			refs := []fileRef{}
			for _, f := range files {
				if adapter != "" && f.Adapter().Name() != adapter {
					continue
				}
				refs = append(refs, refOf(f))
			}
			if a.flags.jsonMode {
				return printJSON(cmd, refs)
			}
			for _, r := range refs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", r.Adapter, r.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&adapter, "adapter", "", "only list files on this adapter")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list paths with this prefix")
	return cmd
}

func (a *app) newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <adapter:path>",
		Short: "Decode a file and print it as YAML (or JSON with --json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			sys, err := a.openSystem(cmd)
			if err != nil {
				return err
			}
			defer func() { err = closeWith(sys, err) }()

			file, err := resolveFile(sys, args[0])
			if err != nil {
				return err
			}
			state, err := sys.Read(cmd.Context(), file)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd, state)
			}
			out, err := yaml.Marshal(map[string]any(state))
			if err != nil {
				return fmt.Errorf("marshal output: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (a *app) newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <adapter:path> [file|-]",
		Short: "Encode a YAML or JSON document and write it to a file",
		Long: "Read a YAML or JSON mapping from a local file, or from stdin when the\n" +
			"argument is omitted or \"-\", encode it in the configured format and write\n" +
			"it to the destination, replacing any existing content.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			input := "-"
			if len(args) == 2 {
				input = args[1]
			}
			state, err := readDocument(cmd, input)
			if err != nil {
				return err
			}

			sys, err := a.openSystem(cmd)
			if err != nil {
				return err
			}
			defer func() { err = closeWith(sys, err) }()

			file, err := resolveFile(sys, args[0])
			if err != nil {
				return err
			}
			if err := sys.Write(cmd.Context(), file, state); err != nil {
				return err
			}
			return a.report(cmd, "written", file, nil)
		},
	}
}

// readDocument parses a YAML or JSON mapping from path, or stdin for "-".
func readDocument(cmd *cobra.Command, path string) (types.State, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse input: %v", types.ErrConfiguration, err)
	}
	return types.State(doc), nil
}

func (a *app) newMoveCmd() *cobra.Command {
	return a.transferCmd("mv", "Move a file, across adapters if needed", "moved",
		func(sys *larder.System, cmd *cobra.Command, src, dst *types.File) error {
			return sys.Move(cmd.Context(), src, dst)
		})
}

func (a *app) newCopyCmd() *cobra.Command {
	return a.transferCmd("cp", "Copy a file, across adapters if needed", "copied",
		func(sys *larder.System, cmd *cobra.Command, src, dst *types.File) error {
			return sys.Copy(cmd.Context(), src, dst)
		})
}

// transferCmd builds the two-argument mv and cp commands.
func (a *app) transferCmd(use, short, verb string, op func(*larder.System, *cobra.Command, *types.File, *types.File) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <adapter:path> <adapter:path>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			sys, err := a.openSystem(cmd)
			if err != nil {
				return err
			}
			defer func() { err = closeWith(sys, err) }()

			src, err := resolveFile(sys, args[0])
			if err != nil {
				return err
			}
			dst, err := resolveFile(sys, args[1])
			if err != nil {
				return err
			}
			if err := op(sys, cmd, src, dst); err != nil {
				return err
			}
			return a.report(cmd, verb, src, dst)
		},
	}
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <adapter:path>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			sys, err := a.openSystem(cmd)
			if err != nil {
				return err
			}
			defer func() { err = closeWith(sys, err) }()

			file, err := resolveFile(sys, args[0])
			if err != nil {
				return err
			}
			if err := sys.Delete(cmd.Context(), file); err != nil {
				return err
			}
			return a.report(cmd, "deleted", file, nil)
		},
	}
}

// report prints the outcome of a mutating command.
func (a *app) report(cmd *cobra.Command, verb string, file, dest *types.File) error {
	if a.flags.jsonMode {
		out := map[string]any{"event": verb, "file": refOf(file)}
		if dest != nil {
			out["destination"] = refOf(dest)
		}
		return printJSON(cmd, out)
	}
	if dest != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", verb, file, dest)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, file)
	return nil
}
