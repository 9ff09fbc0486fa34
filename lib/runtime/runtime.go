package runtime

import (
	"errors"
	"fmt"
	"github.com/caplayground/caplay/lib/binding"
	"github.com/caplayground/caplay/lib/bridge"
	"github.com/caplayground/caplay/lib/events"
	"github.com/caplayground/caplay/lib/fetch"
	"github.com/caplayground/caplay/lib/native"
	"github.com/caplayground/caplay/lib/native/filestore"
	"github.com/caplayground/caplay/lib/persist"
	"github.com/caplayground/caplay/lib/persist/memory"
	"github.com/caplayground/caplay/lib/persist/sqlite"
	"github.com/caplayground/caplay/lib/platform"
	"github.com/caplayground/caplay/lib/store"
	"github.com/caplayground/caplay/lib/store/dualstore"
	"github.com/caplayground/caplay/rpc/client"
	"github.com/caplayground/caplay/rpc/common"
	"github.com/caplayground/caplay/rpc/serializer"
	"github.com/caplayground/caplay/rpc/transport/http"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"io/fs"
	nethttp "net/http"
	"net/url"
	"path/filepath"
	"sync"
)

var Logger = logger.GetLogger("runtime")

// Persistence engines selectable in Config.Persist
const (
	PersistSQLite = "sqlite"
	PersistMaple  = "maple"
	PersistMemory = "memory"
)

// Config configures the bootstrap of a context
type Config struct {
	// Profile is the directory shared by all contexts of a profile.
	// Empty means a throwaway context: memory storage and a memory engine.
	Profile string
	// Persist selects the persistence engine (sqlite, maple or memory)
	Persist string
	// Desktop marks the context as running inside the desktop shell
	Desktop bool
	// UserAgent the platform is detected from, the host's one if empty
	UserAgent string
	// Assets served under the private scheme, optional
	Assets fs.FS
	// BaseURL resolves relative fetch targets, optional
	BaseURL string
	// Bridge is the client configuration of the shell's bridge server.
	// Without endpoints the bridge is a no-op.
	Bridge common.ClientConfig
	// Serializer used on the bridge (json or gob, default json)
	Serializer string
}

// Runtime is everything a context sets up once at startup and shares by reference.
// It lives as long as the context.
type Runtime struct {
	// ContextID identifies this context in logs and bridge requests
	ContextID string

	Platform *platform.Info
	Bus      *events.Bus
	Native   native.Storage
	Store    store.IStore
	Bridge   bridge.Bridge
	HTTP     *nethttp.Client
	Fetcher  *fetch.Fetcher

	engine     persist.Engine
	watcher    *filestore.Watcher
	stopFollow func()
	closeOnce  sync.Once
	closeErr   error
}

// Bootstrap runs the startup of a context: platform detection, storage, event bus,
// store, bridge and HTTP client. Anything it opened is closed again when it fails.
func Bootstrap(cfg Config) (*Runtime, error) {
	rt := &Runtime{
		ContextID: uuid.NewString(),
		Bus:       events.NewBus(),
	}
	if err := rt.init(cfg); err != nil {
		_ = rt.Close()
		return nil, err
	}
	Logger.Infof("context %s ready (%s, engine %s, bridge %v)", rt.ContextID, rt.Platform, engineName(cfg), rt.Bridge.Available())
	return rt, nil
}

func (rt *Runtime) init(cfg Config) error {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = platform.HostUserAgent()
	}
	rt.Platform = platform.Detect(userAgent, cfg.Desktop)

	// native storage
	var fsStore *filestore.Store
	if cfg.Profile == "" {
		rt.Native = native.NewMemoryStorage()
	} else {
		var err error
		if fsStore, err = filestore.Open(filepath.Join(cfg.Profile, "local")); err != nil {
			return fmt.Errorf("open native storage: %w", err)
		}
		rt.Native = fsStore
	}

	// persistence engine + store, the cache follows other contexts' writes
	engine, err := openEngine(cfg)
	if err != nil {
		return fmt.Errorf("open persistence engine: %w", err)
	}
	rt.engine = engine
	rt.Store = dualstore.NewDualStore(engine, rt.Native)
	rt.stopFollow = persist.Follow(engine, rt.Bus.Storage)
	go rt.logWarmUp(engine)

	// the watcher starts last, its catch-up scan already feeds the cache
	if fsStore != nil {
		if rt.watcher, err = fsStore.Watch(rt.Bus.Storage); err != nil {
			return fmt.Errorf("watch native storage: %w", err)
		}
	}

	// bridge
	rt.Bridge = connectBridge(cfg, rt.ContextID)

	// http client, normalizer only in the desktop shell
	var assets nethttp.RoundTripper
	if cfg.Assets != nil {
		assets = fetch.NewSchemeTransport(cfg.Assets)
	}
	rt.HTTP = fetch.NewClient(assets, cfg.Desktop)
	rt.Fetcher = &fetch.Fetcher{Client: rt.HTTP, Normalize: cfg.Desktop}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base url: %w", err)
		}
		rt.Fetcher.Base = base
	}

	return nil
}

func engineName(cfg Config) string {
	if cfg.Profile == "" {
		return PersistMemory
	}
	if cfg.Persist == "" {
		return PersistSQLite
	}
	return cfg.Persist
}

func openEngine(cfg Config) (persist.Engine, error) {
	switch engineName(cfg) {
	case PersistSQLite:
		return sqlite.NewEngine(filepath.Join(cfg.Profile, "persist.sqlite"))
	case PersistMaple:
		return memory.NewEngine(filepath.Join(cfg.Profile, "persist.maple"))
	case PersistMemory:
		return memory.NewEngine("")
	default:
		return nil, fmt.Errorf("unknown persistence engine %q (expected sqlite, maple or memory)", cfg.Persist)
	}
}

// connectBridge returns the no-op bridge whenever the shell cannot be used
func connectBridge(cfg Config, contextID string) bridge.Bridge {
	if len(cfg.Bridge.Endpoints) == 0 {
		return bridge.Noop()
	}

	name := cfg.Serializer
	if name == "" {
		name = "json"
	}
	ser, err := serializer.ByName(name)
	if err != nil {
		Logger.Warningf("bridge disabled: %v", err)
		return bridge.Noop()
	}

	wc, err := client.NewWindowClient(common.ChannelWindow, cfg.Bridge, http.NewHttpClientTransport(), ser, contextID)
	if err != nil {
		Logger.Warningf("bridge disabled: %v", err)
		return bridge.Noop()
	}
	return bridge.New(wc)
}

// Ready is closed once the persistence engine's cache was warmed. Before that
// GetSync misses for keys written in earlier sessions.
func (rt *Runtime) Ready() <-chan struct{} {
	return rt.engine.Ready()
}

func (rt *Runtime) logWarmUp(engine persist.Engine) {
	<-engine.Ready()
	Logger.Infof("context %s: engine cache warm (%d keys)", rt.ContextID, engine.Stats().CachedKeys)
}

// Bind creates a binding of key on the store, native storage and bus of the runtime
func Bind[T any](rt *Runtime, key string, initial T) *binding.Binding[T] {
	return binding.New(rt.Store, rt.Native, rt.Bus, key, initial)
}

// Close stops the watcher, sends queued bridge commands and flushes the store.
// Calling Close more than once returns the first result.
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		var errs []error
		if rt.watcher != nil {
			errs = append(errs, rt.watcher.Close())
		}
		if rt.stopFollow != nil {
			rt.stopFollow()
		}
		if rt.Bridge != nil {
			errs = append(errs, rt.Bridge.Close())
		}
		if rt.Store != nil {
			errs = append(errs, rt.Store.Close())
		}
		rt.closeErr = errors.Join(errs...)
	})
	return rt.closeErr
}
