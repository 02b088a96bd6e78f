package cmd

import (
	"fmt"
	"os"

	"github.com/ByAlphas/BigBaseAlpha-sub000/cmd/db"
	"github.com/ByAlphas/BigBaseAlpha-sub000/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.2.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "bigbase",
		Short: "embedded document database",
		Long: fmt.Sprintf(`BigBase (v%s)

An embedded document database written in Go: schemaless collections of
JSON-like documents with declarative queries, write-through persistence,
a memory-bounded document cache and per-collection write serialization.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of BigBase",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("BigBase v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(db.DatabaseCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("log level (debug, info, warn, error)"))
	key = "log-json"
	RootCmd.PersistentFlags().Bool(key, false, util.WrapString("write logs as json lines instead of console output"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
