package util

import (
	"fmt"
	"github.com/caplayground/caplay/lib/runtime"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/serializer"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (CAPLAY_<FLAG>)
	EnvPrefix = "caplay"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// DefaultProfileDir returns <user config dir>/caplay/default, or a relative
// directory if the user config dir is unknown
func DefaultProfileDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".caplay", "default")
	}
	return filepath.Join(dir, "caplay", "default")
}

// DefaultBridgeEndpoint is the unix socket of the shell in the default profile
func DefaultBridgeEndpoint() string {
	return "unix:" + filepath.Join(DefaultProfileDir(), "caplay.sock")
}

// SetupRPCClientFlags adds the flags of the bridge client to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 5, WrapString("The timeout in seconds of the bridge client"))

	key = "bridge-endpoints"
	cmd.PersistentFlags().String(key, DefaultBridgeEndpoint(), WrapString("The address of the shell's bridge server (host:port or unix:/path). Multiple endpoints can be specified as a comma-separated list"))

	key = "bridge-retries"
	cmd.PersistentFlags().Int(key, 1, WrapString("How many times to retry a request"))
}

// SetupProfileFlags adds the flags selecting the profile and persistence engine to a command
func SetupProfileFlags(cmd *cobra.Command) {
	key := "profile"
	cmd.PersistentFlags().String(key, DefaultProfileDir(), WrapString("The profile directory shared by all contexts (native storage and persistence engine)"))

	key = "persist"
	cmd.PersistentFlags().String(key, runtime.PersistSQLite, WrapString("The persistence engine (sqlite, maple, memory)"))
}

var initOnce sync.Once

// InitConfig loads .env files and configures viper to read CAPLAY_* environment variables
func InitConfig() {
	initOnce.Do(func() {
		// load env files
		_ = godotenv.Load(".env")
		_ = godotenv.Load(".env.local")

		// initialize viper
		viper.SetEnvPrefix(EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv() // read in environment variables that match
	})
}

// InitLogging sets the level of all loggers from the log-level setting
func InitLogging() error {
	return common.InitLoggers(viper.GetString("log-level"))
}

// GetClientConfig reads the bridge client configuration from viper
func GetClientConfig() *common.ClientConfig {
	var endpoints []string
	for _, e := range strings.Split(viper.GetString("bridge-endpoints"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	return &common.ClientConfig{
		Endpoints:     endpoints,
		TimeoutSecond: viper.GetInt("timeout"),
		RetryCount:    viper.GetInt("bridge-retries"),
	}
}

// GetRuntimeConfig reads the configuration of a context from viper
func GetRuntimeConfig() runtime.Config {
	return runtime.Config{
		Profile:    viper.GetString("profile"),
		Persist:    viper.GetString("persist"),
		Desktop:    viper.GetBool("desktop"),
		UserAgent:  viper.GetString("user-agent"),
		Serializer: viper.GetString("serializer"),
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	s, err := serializer.ByName(viper.GetString("serializer"))
	if err != nil {
		return nil, fmt.Errorf("invalid serializer: %w", err)
	}
	return s, nil
}

// BindCommandFlags binds a command's flags (including inherited ones) to viper
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.Flags())
}
