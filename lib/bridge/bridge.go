package bridge

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/caplayground/caplay/lib/db/util"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

var Logger = logger.GetLogger("bridge")

// Command is a window command sent to the desktop shell.
// The values are the names the shell knows them by.
type Command string

const (
	CmdCloseWindow    Command = "closeWindow"
	CmdMinimizeWindow Command = "minimizeWindow"
	CmdMaximizeWindow Command = "maximizeWindow"
)

// Sender delivers a command to the host process
type Sender interface {
	Send(cmd Command) error
}

// Bridge is the command channel from a context to the window hosting it.
// Commands are fire-and-forget: the methods return before the command was
// delivered and nothing reports whether the host acted on it.
type Bridge interface {
	CloseWindow()
	MinimizeWindow()
	MaximizeWindow()
	// Available reports whether a host is connected
	Available() bool
	// Close waits for queued commands to be sent
	Close() error
}

// --------------------------------------------------------------------------
// Queued bridge
// --------------------------------------------------------------------------

type queuedBridge struct {
	sender    Sender
	queue     *util.LockFreeMPSC[Command]
	done      chan struct{}
	closeOnce sync.Once
}

// New returns a bridge sending commands through sender from a background goroutine.
// A failed send is logged and dropped.
func New(sender Sender) Bridge {
	b := &queuedBridge{
		sender: sender,
		queue:  util.NewLockFreeMPSC[Command](),
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *queuedBridge) run() {
	defer close(b.done)
	for cmd := range b.queue.Recv() {
		if err := b.sender.Send(*cmd); err != nil {
			metrics.GetOrCreateCounter(fmt.Sprintf(`caplay_bridge_errors_total{command=%q}`, *cmd)).Inc()
			Logger.Warningf("sending %s failed: %v", *cmd, err)
			continue
		}
		Logger.Debugf("sent %s", *cmd)
	}
}

func (b *queuedBridge) enqueue(cmd Command) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`caplay_bridge_commands_total{command=%q}`, cmd)).Inc()
	if !b.queue.Push(&cmd) {
		Logger.Warningf("bridge is closed, dropped %s", cmd)
	}
}

func (b *queuedBridge) CloseWindow()    { b.enqueue(CmdCloseWindow) }
func (b *queuedBridge) MinimizeWindow() { b.enqueue(CmdMinimizeWindow) }
func (b *queuedBridge) MaximizeWindow() { b.enqueue(CmdMaximizeWindow) }
func (b *queuedBridge) Available() bool { return true }

func (b *queuedBridge) Close() error {
	b.closeOnce.Do(func() {
		b.queue.Close()
		<-b.done
	})
	return nil
}

// --------------------------------------------------------------------------
// No-op bridge
// --------------------------------------------------------------------------

type noopBridge struct{}

// Noop returns the bridge used when no host is reachable (e.g. in a plain browser).
// Every command is silently ignored.
func Noop() Bridge {
	return noopBridge{}
}

func (noopBridge) CloseWindow()    {}
func (noopBridge) MinimizeWindow() {}
func (noopBridge) MaximizeWindow() {}
func (noopBridge) Available() bool { return false }
func (noopBridge) Close() error    { return nil }
