// Package main provides the vibe-skewer command-line tool.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	viper.SetEnvPrefix("VIBE_SKEWER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	root := &cobra.Command{
		Use:   "vibe-skewer",
		Short: "Lay out variant skewers along a gene or genomic region",
		Long: `vibe-skewer groups variant records by position, splits each group into
discs by type and class, sizes discs by occurrence, resolves horizontal
collisions and decides which groups unfold, writing the placed geometry as
tab-delimited rows or JSON.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setDefaults(viper.GetViper()); err != nil {
				return err
			}
			explicit, _ := cmd.Flags().GetString(FlagConfig)
			return initConfig(viper.GetViper(), explicit)
		},
	}

	root.PersistentFlags().String(FlagConfig, "", "Config file (default: ~/"+configFileName+")")
	root.PersistentFlags().String(FlagLogLevel, "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().String(FlagLogFile, "", "Also write JSON logs to this rotating file")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newConfigCmd())

	return root
}
