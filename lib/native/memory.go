package native

import (
	"github.com/puzpuzpuz/xsync/v3"
)

type memoryStorage struct {
	items *xsync.MapOf[string, string]
}

// NewMemoryStorage returns a Storage that lives in process memory.
// It is not shared with other contexts and produces no storage events.
func NewMemoryStorage() Storage {
	return &memoryStorage{items: xsync.NewMapOf[string, string]()}
}

func (m *memoryStorage) GetItem(key string) (string, bool) {
	return m.items.Load(key)
}

func (m *memoryStorage) SetItem(key, value string) error {
	m.items.Store(key, value)
	return nil
}

func (m *memoryStorage) RemoveItem(key string) error {
	m.items.Delete(key)
	return nil
}

func (m *memoryStorage) Keys() []string {
	keys := make([]string, 0, m.items.Size())
	m.items.Range(func(key string, _ string) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
