package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"modulize.dev/pkg/modulize/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List exports without converting",
		Long:  listLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			sourceRoot := parseSourceRoot(args)
			opts := conversionOptions()

			docs, err := documentLoader.Load(ctx, sourceRoot)
			if err != nil {
				return err
			}

			engine := domain.NewConverter(opts)

			_, flags, err := engine.Scan(ctx, docs, opts)
			if err != nil {
				return err
			}

			if err := ui.DisplayNamespaces(ctx, engine.Namespaces()); err != nil {
				return err
			}

			ui.DisplayFlags(ctx, flags)

			return nil
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
