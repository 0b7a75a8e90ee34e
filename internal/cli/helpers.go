package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// openSystem loads the configuration and opens every configured adapter.
// The caller must Close the returned system.
func (a *app) openSystem(cmd *cobra.Command) (*larder.System, error) {
	dir, err := a.configDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	return larder.Open(cmd.Context(), cfg,
		larder.WithBaseDir(dir),
		larder.WithLogger(a.logger(cmd)),
		larder.WithTracer(otel.Tracer("larder")),
	)
}

// resolveFile turns an "adapter:path" reference into a file handle. A
// reference without an adapter prefix names a path on the first enabled
// adapter.
func resolveFile(sys *larder.System, ref string) (*types.File, error) {
	name, path, ok := strings.Cut(ref, ":")
	if !ok {
		a, err := sys.GetFirstEnabledAdapter()
		if err != nil {
			return nil, err
		}
		return types.NewFile(a, ref), nil
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in %q", types.ErrConfiguration, ref)
	}
	a, err := sys.GetAdapter(name)
	if err != nil {
		return nil, err
	}
	return types.NewFile(a, path), nil
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// fileRef is the JSON form of a file handle.
type fileRef struct {
	Adapter string `json:"adapter"`
	Path    string `json:"path"`
}

func refOf(f *types.File) fileRef {
	return fileRef{Adapter: f.Adapter().Name(), Path: f.Path()}
}
