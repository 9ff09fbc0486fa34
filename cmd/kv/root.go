package kv

import (
	"fmt"
	"github.com/caplayground/caplay/cmd/util"
	"github.com/caplayground/caplay/lib/runtime"
	"github.com/caplayground/caplay/lib/store"
	"github.com/caplayground/caplay/rpc/client"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	kvStore store.IStore

	// kvRuntime is the local context, nil when the store is reached through the shell
	kvRuntime *runtime.Runtime

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:   "kv",
		Short: "Read and write the persistent application state",
		Long: util.WrapString(`Opens the profile as a context of its own (native storage, persistence engine) ` +
			`or, with --remote, talks to the store of a running shell over its bridge.`),
		PersistentPreRunE:  setupKVStore,
		PersistentPostRunE: closeKVStore,
	}
)

func init() {
	// Add common flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)
	util.SetupProfileFlags(KeyValueCommands)

	KeyValueCommands.PersistentFlags().Bool("remote", false, util.WrapString("Use the store of a running shell instead of opening the profile"))

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(watchCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVStore opens the local context or connects to the shell's store
func setupKVStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := util.InitLogging(); err != nil {
		return err
	}

	if !viper.GetBool("remote") {
		rt, err := runtime.Bootstrap(util.GetRuntimeConfig())
		if err != nil {
			return err
		}
		kvRuntime, kvStore = rt, rt.Store
		return nil
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	kvStore, err = client.NewRPCStore(
		common.ChannelStore,
		*util.GetClientConfig(),
		http.NewHttpClientTransport(),
		s,
	)
	if err != nil {
		return fmt.Errorf("connect to shell: %w", err)
	}
	return nil
}

// closeKVStore flushes pending engine writes
func closeKVStore(_ *cobra.Command, _ []string) error {
	if kvRuntime != nil {
		return kvRuntime.Close()
	}
	if kvStore != nil {
		return kvStore.Close()
	}
	return nil
}
