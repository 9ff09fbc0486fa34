package shell

import (
	"context"
	"sync"
)

// window states
const (
	stateNormal    = "normal"
	stateMinimized = "minimized"
	stateMaximized = "maximized"
)

// headlessWindow is the window controller of a shell without a native window.
// Closing it stops the shell, minimize and maximize only track the state.
type headlessWindow struct {
	close context.CancelFunc

	mu    sync.Mutex
	state string
}

func newHeadlessWindow(close context.CancelFunc) *headlessWindow {
	return &headlessWindow{close: close, state: stateNormal}
}

// ---- Interface Methods (docu see server.WindowController) ----

func (w *headlessWindow) Close() error {
	Logger.Infof("window close requested")
	w.close()
	return nil
}

func (w *headlessWindow) Minimize() error {
	w.setState(stateMinimized)
	return nil
}

// Maximize toggles between maximized and normal
func (w *headlessWindow) Maximize() error {
	w.mu.Lock()
	next := stateMaximized
	if w.state == stateMaximized {
		next = stateNormal
	}
	w.mu.Unlock()

	w.setState(next)
	return nil
}

func (w *headlessWindow) State() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *headlessWindow) setState(s string) {
	w.mu.Lock()
	prev := w.state
	w.state = s
	w.mu.Unlock()
	Logger.Infof("window %s -> %s", prev, s)
}
