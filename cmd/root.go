package cmd

import (
	"fmt"
	"github.com/caplayground/caplay/cmd/kv"
	"github.com/caplayground/caplay/cmd/platform"
	"github.com/caplayground/caplay/cmd/shell"
	"github.com/caplayground/caplay/cmd/util"
	"github.com/caplayground/caplay/cmd/window"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.4.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "caplay",
		Short: "CAPlayground desktop runtime",
		Long: fmt.Sprintf(`caplay (v%s)

The desktop runtime of CAPlayground: the shell hosting the editor UI,
its window bridge and the persistent state shared by all open contexts.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of caplay",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("caplay v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(shell.ShellCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(window.WindowCommands)
	RootCmd.AddCommand(platform.PlatformCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer of the bridge (json, gob)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
	key = "desktop"
	RootCmd.PersistentFlags().Bool(key, false, util.WrapString("Run as part of the desktop shell (installs the resource url normalizer, sets data-desktop)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
