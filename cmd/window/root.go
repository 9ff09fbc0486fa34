package window

import (
	"fmt"
	"github.com/caplayground/caplay/cmd/util"
	"github.com/caplayground/caplay/lib/bridge"
	"github.com/caplayground/caplay/rpc/client"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/transport/http"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

var (
	windowClient *client.WindowClient

	// WindowCommands represents the window command group
	WindowCommands = &cobra.Command{
		Use:                "window",
		Short:              "Send window commands to a running shell",
		PersistentPreRunE:  setupWindowClient,
		PersistentPostRunE: closeWindowClient,
	}
)

func init() {
	util.SetupRPCClientFlags(WindowCommands)
	WindowCommands.PersistentFlags().Uint64("channel", common.ChannelWindow, util.WrapString("ID of the shell's window channel"))

	for _, c := range []bridge.Command{bridge.CmdCloseWindow, bridge.CmdMinimizeWindow, bridge.CmdMaximizeWindow} {
		WindowCommands.AddCommand(newCommand(c))
	}
}

func newCommand(c bridge.Command) *cobra.Command {
	return &cobra.Command{
		Use:     string(c),
		Aliases: []string{strings.TrimSuffix(string(c), "Window")},
		Short:   fmt.Sprintf("Sends %s to the shell", c),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := windowClient.Send(c); err != nil {
				return err
			}
			fmt.Printf("%s sent successfully\n", c)
			return nil
		},
	}
}

// setupWindowClient connects to the window channel of the shell
func setupWindowClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := util.InitLogging(); err != nil {
		return err
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	windowClient, err = client.NewWindowClient(
		viper.GetUint64("channel"),
		*util.GetClientConfig(),
		http.NewHttpClientTransport(),
		s,
		uuid.NewString(),
	)
	return err
}

func closeWindowClient(_ *cobra.Command, _ []string) error {
	if windowClient == nil {
		return nil
	}
	return windowClient.Close()
}
