// Package serializer provides the wire encodings for bridge messages.
//
// Two implementations of IRPCSerializer are available:
//   - json: human readable, message types encoded by name; the default, and the
//     encoding a web UI can produce without any extra code
//   - gob: Go's binary encoding, for Go clients talking to the shell
//
// Use ByName to select one from configuration.
package serializer
