package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modulize.dev/pkg/modulize/internal/domain"
	m "modulize.dev/pkg/modulize/internal/model"
)

var convertParallelFlag int
var convertDryRunFlag bool
var convertManifestFlag string
var convertRootsFlag []string
var convertExtFlag string
var convertMarkerFlag string

// convertCmd represents the convert command.
var convertCmd = newConvertCmd()

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [dir]",
		Short: "Convert namespace documents to ES modules",
		Long:  convertLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			sourceRoot := parseSourceRoot(args)
			opts := conversionOptions()

			slog.Info("starting conversion", "source", sourceRoot, "roots", opts.Roots)

			docs, err := documentLoader.Load(ctx, sourceRoot)
			if err != nil {
				return err
			}

			ui.DisplayConcurrencyInfo(ctx, opts.Threads)

			engine := domain.NewConverter(opts)

			conversion, err := engine.Convert(ctx, docs, opts)
			if err != nil {
				return err
			}

			if !convertDryRunFlag {
				outputDir := m.Path(viper.GetString(outputFlagName))
				if err := outputStore.WriteOutputs(ctx, outputDir, conversion.Outputs); err != nil {
					return err
				}
			}

			if convertManifestFlag != "" {
				if err := outputStore.WriteManifest(ctx, m.Path(convertManifestFlag), conversion); err != nil {
					return err
				}
			}

			slog.Info("conversion finished",
				"documents", len(conversion.Results),
				"flags", len(conversion.Flags))

			return ui.DisplaySummary(ctx, conversion)
		},
	}

	configureConvertFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func configureConvertFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&convertParallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of parallel workers per conversion phase")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.Flags().StringArrayVarP(&convertRootsFlag, rootFlagName, "r", viper.GetStringSlice(rootsConfigKey), "namespace root object name (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(rootFlagName), rootsConfigKey)

	cmd.Flags().StringVar(&convertExtFlag, extFlagName, viper.GetString(moduleExtConfigKey), "output module extension")
	bindFlagToConfig(cmd.Flags().Lookup(extFlagName), moduleExtConfigKey)

	cmd.Flags().StringVar(&convertMarkerFlag, markerFlagName, viper.GetString(markerConfigKey), "annotation tag marking namespace object literals")
	bindFlagToConfig(cmd.Flags().Lookup(markerFlagName), markerConfigKey)

	cmd.Flags().BoolVar(&convertDryRunFlag, dryRunFlagName, false, "convert without writing any output files")
	cmd.Flags().StringVar(&convertManifestFlag, manifestFlagName, "", "write a YAML conversion manifest to the given path")
}
