package cache

import "sync"

// MemCache is the default in-process provider.
// Entries live for the process lifetime only.
type MemCache struct {
	mutex *sync.RWMutex
	db    map[string]Entry
}

func NewMemCache() MemCache {
	return MemCache{
		mutex: &sync.RWMutex{},
		db:    make(map[string]Entry),
	}
}

func (m MemCache) Get(key string) (Entry, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	entry, ok := m.db[key]
	return entry, ok, nil
}

func (m MemCache) Put(key string, entry Entry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.db[key] = entry
	return nil
}

func (m MemCache) Clear() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for key := range m.db {
		delete(m.db, key)
	}
	return nil
}

func (m MemCache) Len() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.db), nil
}

func (m MemCache) Close() error {
	return nil
}
