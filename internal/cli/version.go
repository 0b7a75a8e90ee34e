package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/serializer"
	"github.com/mesh-intelligence/larder/pkg/larder"
)

const modulePath = "github.com/mesh-intelligence/larder"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the larder version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "larder v%s\nmodule: %s\nformats: %v\n",
				larder.Version, modulePath, serializer.Formats())
			return nil
		},
	}
}
