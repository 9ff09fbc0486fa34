package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/caplayground/caplay/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("StaleWrites", func(t *testing.T) {
			testStaleWrites(t, factory())
		})

		t.Run("SetIfUnset", func(t *testing.T) {
			testSetIfUnset(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Range", func(t *testing.T) {
			testRange(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("WriteIdx", func(t *testing.T) {
			testWriteIdx(t, factory())
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte(`{"a":1}`)
	testValue2 := []byte(`{"a":2}`)

	database.Set(testKey, testValue1, 1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2, 2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = database.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// the returned slice must be a copy
	retrievedValue, _ := database.Get(testKey)
	retrievedValue[0] = 'X'
	if result, _ = database.Get(testKey); !bytes.Equal(result, testValue2) {
		t.Errorf("Stored value was modified through a returned slice: %s", result)
	}

	// the stored slice must be a copy as well
	input := []byte("input")
	database.Set("copy-key", input, 3)
	input[0] = 'X'
	if result, _ = database.Get("copy-key"); string(result) != "input" {
		t.Errorf("Stored value was modified through the input slice: %s", result)
	}
}

func testStaleWrites(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	database.Set("key", []byte("new"), 10)
	database.Set("key", []byte("old"), 5)

	if result, _ := database.Get("key"); string(result) != "new" {
		t.Errorf("Expected stale write to be ignored, got %s", result)
	}

	// equal indexes overwrite
	database.Set("key", []byte("same"), 10)
	if result, _ := database.Get("key"); string(result) != "same" {
		t.Errorf("Expected write with equal index to succeed, got %s", result)
	}
}

func testSetIfUnset(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSetIfUnset|db.FeatureGet)

	database.SetIfUnset("key", []byte("first"), 1)
	database.SetIfUnset("key", []byte("second"), 2)

	if result, _ := database.Get("key"); string(result) != "first" {
		t.Errorf("Expected SetIfUnset to keep the first value, got %s", result)
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	database.Set("key", []byte("value"), 2)

	// a stale delete keeps the newer entry
	database.Delete("key", 1)
	if _, ok := database.Get("key"); !ok {
		t.Fatalf("Expected stale delete to be ignored")
	}

	database.Delete("key", 3)
	if _, ok := database.Get("key"); ok {
		t.Errorf("Expected key to be deleted")
	}

	// deleting a missing key is a no-op
	database.Delete("missing", 4)
	if _, ok := database.Get("missing"); ok {
		t.Errorf("Expected missing key to stay missing")
	}
}

func testRange(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureRange)

	want := map[string]string{}
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		want[key] = fmt.Sprintf("value-%d", i)
		database.Set(key, []byte(want[key]), uint64(i+1))
	}

	got := map[string]string{}
	database.Range(func(key string, value []byte) bool {
		got[key] = string(value)
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(got))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Expected %s=%s, got %s", k, v, got[k])
		}
	}

	// stopping early
	visited := 0
	database.Range(func(string, []byte) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("Expected Range to stop after the first entry, visited %d", visited)
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	source := factory()
	defer source.Close()

	requireFeature(t, source, db.FeatureSave|db.FeatureLoad|db.FeatureSet|db.FeatureGet)

	for i := 0; i < 100; i++ {
		source.Set(fmt.Sprintf("key-%d", i), []byte(fmt.Sprintf("value-%d", i)), uint64(i+1))
	}
	source.Set("empty", []byte{}, 200)

	var buf bytes.Buffer
	if err := source.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	target := factory()
	defer target.Close()
	target.Set("stale", []byte("removed by load"), 1)

	if err := target.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := 0; i < 100; i++ {
		got, ok := target.Get(fmt.Sprintf("key-%d", i))
		if !ok || string(got) != fmt.Sprintf("value-%d", i) {
			t.Errorf("Expected key-%d to be restored, got %q (ok=%v)", i, got, ok)
		}
	}
	if got, ok := target.Get("empty"); !ok || len(got) != 0 {
		t.Errorf("Expected empty value to be restored, got %q (ok=%v)", got, ok)
	}
	if _, ok := target.Get("stale"); ok {
		t.Errorf("Expected Load to replace existing entries")
	}
	if target.WriteIdx() != source.WriteIdx() {
		t.Errorf("Expected write index %d, got %d", source.WriteIdx(), target.WriteIdx())
	}

	if err := target.Load(bytes.NewReader([]byte("garbage"))); err == nil {
		t.Errorf("Expected Load of invalid data to fail")
	}
}

func testWriteIdx(t *testing.T, database db.KVDB) {
	defer database.Close()

	database.SetWriteIdx(10)
	database.SetWriteIdx(5)
	if idx := database.WriteIdx(); idx != 10 {
		t.Errorf("Expected write index to stay at 10, got %d", idx)
	}

	if database.SupportsFeature(db.FeatureSet) {
		database.Set("key", []byte("value"), 20)
		if idx := database.WriteIdx(); idx != 20 {
			t.Errorf("Expected Set to advance the write index to 20, got %d", idx)
		}
	}
}

func testConcurrent(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d-%d", w, i)
				database.Set(key, []byte(key), uint64(w*perWorker+i+1))
				if got, ok := database.Get(key); !ok || string(got) != key {
					t.Errorf("Expected %s, got %q (ok=%v)", key, got, ok)
				}
			}
		}(w)
	}
	wg.Wait()

	if info := database.GetInfo(); info.Keys != workers*perWorker {
		t.Errorf("Expected %d keys, got %d", workers*perWorker, info.Keys)
	}
}
