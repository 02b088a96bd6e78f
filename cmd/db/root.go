package db

import (
	"github.com/ByAlphas/BigBaseAlpha-sub000/cmd/util"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// st is the store instance shared by all db subcommands. It is opened
	// by the group's PersistentPreRunE and closed again after the command.
	st store.IStore

	// DatabaseCommands represents the db command group
	DatabaseCommands = &cobra.Command{
		Use:                "db",
		Short:              "Work with an embedded document store",
		PersistentPreRunE:  setupStore,
		PersistentPostRunE: teardownStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add store flags to the db command group
	util.SetupStoreFlags(DatabaseCommands)

	// Add subcommands
	DatabaseCommands.AddCommand(createCmd)
	DatabaseCommands.AddCommand(collectionsCmd)
	DatabaseCommands.AddCommand(insertCmd)
	DatabaseCommands.AddCommand(getCmd)
	DatabaseCommands.AddCommand(updateCmd)
	DatabaseCommands.AddCommand(deleteCmd)
	DatabaseCommands.AddCommand(queryCmd)
	DatabaseCommands.AddCommand(indexCmd)
	DatabaseCommands.AddCommand(indexesCmd)
	DatabaseCommands.AddCommand(statsCmd)
	DatabaseCommands.AddCommand(perfTestCmd)
}

// setupStore opens the store instance the subcommand will run against
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Merge the optional config file below flags and environment variables
	if path := viper.GetString("config"); path != "" {
		if err := util.LoadConfigFile(path); err != nil {
			return err
		}
	}

	b, err := util.GetBackend()
	if err != nil {
		return err
	}

	st = store.New(b, util.GetStoreOptions())
	return st.Open()
}

// teardownStore closes the store after the subcommand finished
func teardownStore(_ *cobra.Command, _ []string) error {
	if st == nil {
		return nil
	}
	return st.Close()
}
