package platform

import (
	"fmt"
	"github.com/caplayground/caplay/cmd/util"
	"github.com/caplayground/caplay/lib/platform"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"sort"
)

// PlatformCmd prints what a context would detect at startup
var PlatformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Print the detected platform and the document attributes",
	Long: util.WrapString(`Runs the platform detection the way a context does at startup. ` +
		`With --document the attributes are set on the given HTML file and the result is printed.`),
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := util.BindCommandFlags(cmd); err != nil {
			return err
		}
		return util.InitLogging()
	},
	RunE: run,
}

func init() {
	PlatformCmd.Flags().String("user-agent", "", util.WrapString("User agent to classify (defaults to the one of this host)"))
	PlatformCmd.Flags().String("document", "", util.WrapString("HTML file to set the attributes on"))
}

func run(_ *cobra.Command, _ []string) error {
	ua := viper.GetString("user-agent")
	if ua == "" {
		ua = platform.HostUserAgent()
	}
	info := platform.Detect(ua, viper.GetBool("desktop"))

	doc := viper.GetString("document")
	if doc != "" {
		f, err := os.Open(doc)
		if err != nil {
			return err
		}
		defer f.Close()

		out, err := platform.InjectAttributes(f, info.Attributes())
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	fmt.Printf("user agent: %s\n", info.UserAgent())
	fmt.Printf("platform:   %s\n", info.Platform())
	fmt.Printf("desktop:    %v\n", info.Desktop())

	attrs := info.Attributes()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s=%q\n", name, attrs[name])
	}
	return nil
}
