// Package cmd provides the root command and CLI setup for modulize.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"modulize.dev/pkg/modulize/internal/adapter"
	"modulize.dev/pkg/modulize/internal/controller"
	m "modulize.dev/pkg/modulize/internal/model"
)

var jsFileAdapter adapter.JSFileAdapter
var documentLoader adapter.DocumentLoader
var outputStore adapter.OutputStore
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that write modules.
var outputDirFlag string

// verboseFlag switches file logging to debug level.
var verboseFlag bool

// excludeKeys is a root-level flag removing documents from conversion.
var excludeKeys []string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	jsFileAdapter = adapter.NewLocalJSFileAdapter()
	documentLoader = adapter.NewLocalDocumentLoader(jsFileAdapter)
	outputStore = adapter.NewLocalOutputStore()
}

const rootLongDescription = `Modulize converts legacy JavaScript sources using a global-root-object
namespace convention into ES modules with explicit import and export
declarations. Exported members keep their names, references to other
documents' namespaces become imports, and triple-slash reference links
become module specifiers.`

const convertLongDescription = `Convert the documents under the given directory (default: current
directory) and write the generated modules to the output directory.

Documents excluded with --exclude keep their links dropped and their
exports invisible to the rest of the set.`

const listLongDescription = `Scan the documents under the given directory and list every export the
conversion would produce, without writing any output.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modulize",
		Short: "Namespace to ES module converter",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for generated modules",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludeKeys, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude document by key (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parseSourceRoot(args []string) m.Path {
	if len(args) == 0 {
		return m.Path(".")
	}

	return m.Path(args[0])
}
