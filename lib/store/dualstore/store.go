package dualstore

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/VictoriaMetrics/metrics"
	"github.com/caplayground/caplay/lib/native"
	"github.com/caplayground/caplay/lib/persist"
	"github.com/caplayground/caplay/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"sync/atomic"
)

var Logger = logger.GetLogger("store")

var (
	setCounter         = metrics.NewCounter(`caplay_store_sets_total`)
	nativeErrorCounter = metrics.NewCounter(`caplay_store_native_write_errors_total`)
)

type storeImpl struct {
	engine persist.Engine
	native native.Storage
	closed atomic.Bool
}

// NewDualStore creates a store that keeps every entry in two places: the persistence
// engine (primary, cached, written asynchronously) and native storage (fallback,
// written synchronously).
func NewDualStore(engine persist.Engine, ls native.Storage) store.IStore {
	return &storeImpl{
		engine: engine,
		native: ls,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) GetSync(key string) (json.RawMessage, bool) {
	if s.closed.Load() {
		return nil, false
	}
	value, ok := s.engine.Cached(key)
	if !ok {
		return nil, false
	}
	return value, true
}

func (s *storeImpl) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if s.closed.Load() {
		return nil, false, store.NewError(store.RetCClosed, "store is closed", nil)
	}
	value, ok, err := s.engine.Load(ctx, key)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, err
		}
		return nil, false, store.NewError(store.RetCInternalError, "persistence engine read failed", err)
	}
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *storeImpl) Set(key string, value any) error {
	if s.closed.Load() {
		return store.NewError(store.RetCClosed, "store is closed", nil)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return store.NewError(store.RetCInvalidValue, "value is not JSON serializable", err)
	}
	setCounter.Inc()

	// native storage first: it is what a reload of any context sees before the engine is ready
	nativeErr := s.native.SetItem(key, string(data))
	if nativeErr != nil {
		nativeErrorCounter.Inc()
		Logger.Warningf("native write of %q failed: %v", key, nativeErr)
	}

	// the engine is attempted even when native storage failed; its errors are logged by the engine
	s.engine.Put(key, data)

	if nativeErr != nil {
		return store.NewError(store.RetCNativeStorage, "native storage write failed", nativeErr)
	}
	return nil
}

func (s *storeImpl) GetInfo() (store.Info, error) {
	stats := s.engine.Stats()
	return store.Info{
		Engine:        stats.Engine,
		CachedKeys:    stats.CachedKeys,
		NativeKeys:    len(s.native.Keys()),
		PendingWrites: stats.Pending,
		Writes:        stats.Writes,
		WriteErrors:   stats.WriteErrors,
		WriteMeanMs:   stats.WriteMeanMs,
	}, nil
}

func (s *storeImpl) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.engine.Close()
}
