package dualstore

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/caplayground/caplay/lib/native"
	"github.com/caplayground/caplay/lib/persist/memory"
	"github.com/caplayground/caplay/lib/store"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T, ls native.Storage) store.IStore {
	t.Helper()
	engine, err := memory.NewEngine("")
	if err != nil {
		t.Fatalf("memory.NewEngine failed: %v", err)
	}
	st := NewDualStore(engine, ls)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// failingStorage rejects every write, like a full quota
type failingStorage struct {
	native.Storage
}

func (failingStorage) SetItem(string, string) error {
	return errors.New("quota exceeded")
}

type project struct {
	Name   string   `json:"name"`
	Layers []string `json:"layers"`
	Width  int      `json:"width"`
}

func TestRoundTrip(t *testing.T) {
	ls := native.NewMemoryStorage()
	st := newTestStore(t, ls)

	tests := []struct {
		name  string
		key   string
		value any
		into  func() any
	}{
		{"string", "theme", "dark", func() any { return new(string) }},
		{"number", "zoom", 1.25, func() any { return new(float64) }},
		{"bool", "snap", true, func() any { return new(bool) }},
		{"slice", "recent", []string{"a.ca", "b.ca"}, func() any { return new([]string) }},
		{"struct", "project", project{Name: "wall", Layers: []string{"bg"}, Width: 1170}, func() any { return new(project) }},
		{"map", "flags", map[string]bool{"x": true}, func() any { return new(map[string]bool) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := st.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			raw, ok := st.GetSync(tt.key)
			if !ok {
				t.Fatal("GetSync missed right after Set")
			}
			got := tt.into()
			if err := json.Unmarshal(raw, got); err != nil {
				t.Fatalf("unmarshal %s: %v", raw, err)
			}
			if !reflect.DeepEqual(reflect.ValueOf(got).Elem().Interface(), tt.value) {
				t.Errorf("GetSync = %s, want %v", raw, tt.value)
			}

			// native storage holds the same encoding
			nv, ok := ls.GetItem(tt.key)
			if !ok || nv != string(raw) {
				t.Errorf("native = %q, %v; want %s", nv, ok, raw)
			}

			// and the engine answers authoritatively
			araw, ok, err := st.Get(context.Background(), tt.key)
			if err != nil || !ok || string(araw) != string(raw) {
				t.Errorf("Get = %s, %v, %v; want %s", araw, ok, err, raw)
			}
		})
	}
}

func TestIdempotentSet(t *testing.T) {
	ls := native.NewMemoryStorage()
	st := newTestStore(t, ls)

	for i := 0; i < 2; i++ {
		if err := st.Set("k", map[string]int{"a": 1}); err != nil {
			t.Fatalf("Set #%d failed: %v", i, err)
		}
	}
	raw, ok := st.GetSync("k")
	if !ok || string(raw) != `{"a":1}` {
		t.Fatalf("GetSync = %s, %v", raw, ok)
	}
	if keys := ls.Keys(); len(keys) != 1 {
		t.Errorf("native keys = %v, want one key", keys)
	}
}

func TestGetSyncMiss(t *testing.T) {
	st := newTestStore(t, native.NewMemoryStorage())
	if _, ok := st.GetSync("missing"); ok {
		t.Fatal("expected miss")
	}
	if _, ok, err := st.Get(context.Background(), "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}
}

func TestSetErrors(t *testing.T) {
	t.Run("InvalidValue", func(t *testing.T) {
		st := newTestStore(t, native.NewMemoryStorage())
		err := st.Set("k", make(chan int))

		var storeErr *store.Error
		if !errors.As(err, &storeErr) || storeErr.Code != store.RetCInvalidValue {
			t.Fatalf("Set(chan) = %v, want RetCInvalidValue", err)
		}
		if _, ok := st.GetSync("k"); ok {
			t.Error("invalid value reached the engine")
		}
	})

	t.Run("NativeStorage", func(t *testing.T) {
		st := newTestStore(t, failingStorage{native.NewMemoryStorage()})
		err := st.Set("k", 1)

		var storeErr *store.Error
		if !errors.As(err, &storeErr) || storeErr.Code != store.RetCNativeStorage {
			t.Fatalf("Set = %v, want RetCNativeStorage", err)
		}
		// the engine still got the value
		if raw, ok := st.GetSync("k"); !ok || string(raw) != "1" {
			t.Errorf("GetSync = %s, %v", raw, ok)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		st := newTestStore(t, native.NewMemoryStorage())
		if err := st.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := st.Close(); err != nil {
			t.Fatalf("second Close failed: %v", err)
		}

		var storeErr *store.Error
		if err := st.Set("k", 1); !errors.As(err, &storeErr) || storeErr.Code != store.RetCClosed {
			t.Errorf("Set after Close = %v, want RetCClosed", err)
		}
		if _, _, err := st.Get(context.Background(), "k"); !errors.As(err, &storeErr) || storeErr.Code != store.RetCClosed {
			t.Errorf("Get after Close = %v, want RetCClosed", err)
		}
	})
}

func TestGetInfo(t *testing.T) {
	st := newTestStore(t, native.NewMemoryStorage())
	_ = st.Set("a", 1)
	_ = st.Set("b", 2)

	// wait until both durable writes ran
	if _, _, err := st.Get(context.Background(), "a"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	info, err := st.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info.Engine != "memory" || info.CachedKeys != 2 || info.NativeKeys != 2 {
		t.Errorf("GetInfo = %+v", info)
	}
	if info.Writes != 2 || info.WriteErrors != 0 {
		t.Errorf("Writes = %d, WriteErrors = %d; want 2, 0", info.Writes, info.WriteErrors)
	}
}
