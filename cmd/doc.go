// Package cmd implements the command-line interface of caplay.
//
// The package is organized into several subpackages:
//
//   - shell: runs the desktop shell host (UI server, bridge server, metrics)
//   - kv: reads, writes and watches the persistent state of a profile, locally as
//     another context or remotely through a running shell
//   - window: sends window commands to a running shell
//   - platform: prints the detected platform and document attributes
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set as environment variable CAPLAY_<FLAG> (dashes become
// underscores), .env and .env.local are loaded first. See caplay -help for a list
// of all commands.
package cmd
