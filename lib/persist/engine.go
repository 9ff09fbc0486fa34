package persist

import (
	"context"
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/caplayground/caplay/lib/db"
	"github.com/caplayground/caplay/lib/db/util"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"sync"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("persist")

// --------------------------------------------------------------------------
// Queued Engine
// --------------------------------------------------------------------------

type jobKind uint8

const (
	jobWrite jobKind = iota
	jobRead
)

// job is a unit of work for the engine worker
type job struct {
	kind  jobKind
	key   string
	value []byte
	index uint64
	ctx   context.Context
	reply chan readResult
}

type readResult struct {
	value  []byte
	loaded bool
	err    error
}

// queuedEngine implements Engine on top of a Backend.
//
// Reads are served from the cache. Writes update the cache synchronously and are
// queued for the backend; a single worker goroutine executes the queue, so the
// backend sees the writes of one goroutine in call order and an authoritative
// read (Load) is executed after every write queued before it.
type queuedEngine struct {
	name    string
	backend Backend
	cache   db.KVDB
	jobs    *util.LockFreeMPSC[job]
	index   atomic.Uint64
	ready   chan struct{}
	done    chan struct{}
	closeMu sync.Once

	// statistics
	writeTimer  gometrics.Timer
	writeErrors atomic.Uint64
	errCounter  *metrics.Counter
	putCounter  *metrics.Counter
}

// NewEngine creates an engine that persists to the given backend and serves
// synchronous reads from the cache. Warming the cache from the backend is the
// first job of the worker, Ready() is closed when it finished.
func NewEngine(name string, backend Backend, cache db.KVDB) Engine {
	e := &queuedEngine{
		name:       name,
		backend:    backend,
		cache:      cache,
		jobs:       util.NewLockFreeMPSC[job](),
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
		writeTimer: gometrics.NewTimer(),
		errCounter: metrics.GetOrCreateCounter(fmt.Sprintf(`caplay_persist_write_errors_total{engine=%q}`, name)),
		putCounter: metrics.GetOrCreateCounter(fmt.Sprintf(`caplay_persist_writes_total{engine=%q}`, name)),
	}

	go e.work()

	return e
}

// --------------------------------------------------------------------------
// Interface Methods (docu see persist.Engine)
// --------------------------------------------------------------------------

func (e *queuedEngine) Cached(key string) ([]byte, bool) {
	return e.cache.Get(key)
}

func (e *queuedEngine) Load(ctx context.Context, key string) ([]byte, bool, error) {
	reply := make(chan readResult, 1)

	// the index pins the cache refresh: a Put issued after this call wins
	if !e.jobs.Push(&job{kind: jobRead, key: key, index: e.index.Load(), ctx: ctx, reply: reply}) {
		return nil, false, fmt.Errorf("persist engine %s is closed", e.name)
	}

	select {
	case res := <-reply:
		return res.value, res.loaded, res.err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (e *queuedEngine) Put(key string, value []byte) {
	idx := e.index.Add(1)
	e.cache.Set(key, value, idx)
	e.putCounter.Inc()

	if !e.jobs.Push(&job{kind: jobWrite, key: key, value: value, index: idx}) {
		Logger.Warningf("engine %s is closed, dropped durable write of %q", e.name, key)
	}
}

func (e *queuedEngine) Observe(key string, value []byte, present bool) {
	// a fresh index wins over authoritative reads already in the queue
	idx := e.index.Add(1)
	if present {
		e.cache.Set(key, value, idx)
		return
	}
	e.cache.Delete(key, idx)
}

func (e *queuedEngine) Ready() <-chan struct{} {
	return e.ready
}

func (e *queuedEngine) Stats() Stats {
	return Stats{
		Engine:      e.name,
		CachedKeys:  e.cache.GetInfo().Keys,
		Pending:     e.jobs.Len(),
		Writes:      uint64(e.writeTimer.Count()),
		WriteErrors: e.writeErrors.Load(),
		WriteMeanMs: e.writeTimer.Mean() / float64(time.Millisecond),
	}
}

func (e *queuedEngine) Close() error {
	var err error
	e.closeMu.Do(func() {
		e.jobs.Close()
		<-e.done
		err = e.backend.Close()
		e.writeTimer.Stop()
		_ = e.cache.Close()
	})
	return err
}

// --------------------------------------------------------------------------
// Worker
// --------------------------------------------------------------------------

// work warms the cache and then executes queued jobs until the queue is closed
func (e *queuedEngine) work() {
	defer close(e.done)

	e.warm()
	close(e.ready)

	for j := range e.jobs.Recv() {
		switch j.kind {
		case jobWrite:
			e.write(j)
		case jobRead:
			e.read(j)
		}
	}
}

// warm loads every stored entry into the cache.
// Entries written while warming carry a higher index and are kept.
func (e *queuedEngine) warm() {
	start := time.Now()
	count := 0
	err := e.backend.Scan(context.Background(), func(key string, value []byte) {
		e.cache.SetIfUnset(key, value, 0)
		count++
	})
	if err != nil {
		Logger.Errorf("engine %s: cache warm-up failed after %d entries: %v", e.name, count, err)
		return
	}
	Logger.Debugf("engine %s: warmed %d entries in %s", e.name, count, time.Since(start))
}

func (e *queuedEngine) write(j *job) {
	var err error
	e.writeTimer.Time(func() {
		err = e.backend.Write(context.Background(), j.key, j.value)
	})
	if err != nil {
		e.writeErrors.Add(1)
		e.errCounter.Inc()
		Logger.Errorf("engine %s: durable write of %q failed: %v", e.name, j.key, err)
	}
}

func (e *queuedEngine) read(j *job) {
	if err := j.ctx.Err(); err != nil {
		j.reply <- readResult{err: err}
		return
	}

	value, loaded, err := e.backend.Read(j.ctx, j.key)
	if err == nil && loaded {
		e.cache.Set(j.key, value, j.index)
	}
	j.reply <- readResult{value: value, loaded: loaded, err: err}
}
