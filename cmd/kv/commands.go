package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/caplayground/caplay/lib/runtime"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Long:  "Sets the value for a key. Values that are valid JSON are stored as is, anything else is stored as a JSON string.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.Set(args[0], parseValue(args[1])); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			sync, _ := cmd.Flags().GetBool("sync")

			var (
				value json.RawMessage
				ok    bool
				err   error
			)
			if sync {
				if kvRuntime != nil {
					// a fresh context only has a warm cache after the engine's scan
					<-kvRuntime.Ready()
				}
				value, ok = kvStore.GetSync(key)
			} else {
				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				defer cancel()
				value, ok, err = kvStore.Get(ctx, key)
				if err != nil {
					return err
				}
			}
			fmt.Printf("key=%s, found=%v, value=%s\n", key, ok, value)
			return nil
		},
	}
	watchCmd = &cobra.Command{
		Use:   "watch [key]",
		Short: "Prints the value of a key whenever another context changes it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kvRuntime == nil {
				return errors.New("watch needs a local context, it does not work with --remote")
			}

			b := runtime.Bind[json.RawMessage](kvRuntime, args[0], nil)
			defer b.Close()

			printValue(b.Key(), b.Value())
			cancel := b.Watch(func(v json.RawMessage) {
				printValue(b.Key(), v)
			})
			defer cancel()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints statistics about the store and its backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := kvStore.GetInfo()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
)

func init() {
	getCmd.Flags().Bool("sync", true, "Read the cached value, --sync=false waits for the persistence engine")
}

// parseValue keeps valid JSON and wraps anything else as a string
func parseValue(s string) any {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return s
}

func printValue(key string, v json.RawMessage) {
	if v == nil {
		fmt.Printf("%s = <unset>\n", key)
		return
	}
	fmt.Printf("%s = %s\n", key, v)
}
