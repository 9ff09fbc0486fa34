package shell

import (
	"context"
	"errors"
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/caplayground/caplay/cmd/util"
	"github.com/caplayground/caplay/lib/runtime"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/server"
	"github.com/caplayground/caplay/rpc/transport/http"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io/fs"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("shell")

var (
	shellConfig = &common.ServerConfig{}
	ShellCmd    = &cobra.Command{
		Use:   "shell",
		Short: "Start the desktop shell",
		Long: `Start the desktop shell: serves the editor UI, runs the window bridge for it and
owns the store of the profile. The configuration can be set via command line flags
or environment variables. The format of the environment variables is CAPLAY_<flag>
(e.g. CAPLAY_HTTP_ADDR=127.0.0.1:4000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	util.SetupProfileFlags(ShellCmd)

	// add flags
	key := "ui-dir"
	ShellCmd.Flags().String(key, "ui", util.WrapString("Directory of the built editor UI (served on http-addr and under the app: scheme)"))

	key = "http-addr"
	ShellCmd.Flags().String(key, "127.0.0.1:3000", util.WrapString("The address the UI and /metrics are served on"))

	key = "endpoint"
	ShellCmd.Flags().String(key, util.DefaultBridgeEndpoint(), util.WrapString("The address the bridge server listens on (e.g. unix:/tmp/caplay.sock, 127.0.0.1:3001)"))

	key = "channels"
	ShellCmd.Flags().String(key, "1=window,2=store", util.WrapString("Comma-separated list of bridge channels. Format: ID=TYPE where TYPE is one of: window, store"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	channels, err := common.ParseChannels(viper.GetString("channels"))
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return errors.New("at least one bridge channel is required")
	}

	shellConfig.Channels = channels
	shellConfig.Endpoint = viper.GetString("endpoint")
	shellConfig.LogLevel = viper.GetString("log-level")

	return util.InitLogging()
}

// run starts the shell and blocks until the window is closed or a signal arrives
func run(cmd *cobra.Command, _ []string) error {
	uiDir := viper.GetString("ui-dir")
	if st, err := os.Stat(uiDir); err != nil || !st.IsDir() {
		return fmt.Errorf("ui directory %q not found", uiDir)
	}
	assets := os.DirFS(uiDir)
	httpAddr := viper.GetString("http-addr")

	// the shell's own context
	cfg := util.GetRuntimeConfig()
	cfg.Desktop = true
	cfg.Assets = assets
	cfg.BaseURL = "http://" + httpAddr + "/"

	rt, err := runtime.Bootstrap(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			Logger.Errorf("closing runtime: %v", err)
		}
	}()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, closeWindow := context.WithCancel(ctx)
	defer closeWindow()

	window := newHeadlessWindow(closeWindow)

	bridgeServer, err := server.NewRPCServer(
		*shellConfig,
		http.NewHttpServerTransport(),
		s,
		server.Targets{Window: window, Store: rt.Store},
	)
	if err != nil {
		return err
	}

	uiServer := &nethttp.Server{
		Addr:              httpAddr,
		Handler:           newMux(assets, rt),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := bridgeServer.Serve(); err != nil {
			errCh <- fmt.Errorf("bridge server: %w", err)
		}
	}()
	go func() {
		if err := uiServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("ui server: %w", err)
		}
	}()

	Logger.Infof("shell running: ui on http://%s, bridge on %s (%s)", httpAddr, shellConfig.Endpoint, rt.Platform)

	var runErr error
	select {
	case <-ctx.Done():
		Logger.Infof("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(
		runErr,
		uiServer.Shutdown(shutdownCtx),
		bridgeServer.Shutdown(shutdownCtx),
	)
}

// newMux serves the UI and the process metrics
func newMux(assets fs.FS, rt *runtime.Runtime) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		metrics.WritePrometheus(w, true)
	})
	mux.Handle("/", newUIHandler(assets, rt.Platform))
	return mux
}
