// Package bridge is the window command channel from a context to the desktop shell
// hosting it: close, minimize and maximize.
//
// The same UI runs with and without a host. Without one (no endpoint configured, or
// the host cannot be reached at startup) the bridge is Noop and every command is
// dropped without error. With one, commands are queued and sent in order by a single
// goroutine; send errors are logged, never returned.
package bridge
