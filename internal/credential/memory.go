// ABOUTME: In-memory credential store used by tests and the memory backend
// ABOUTME: Thread-safe; contents are lost when the process exits

package credential

import "sync"

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	cred *Credential

	sets int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set implements Store.
func (m *MemoryStore) Set(c Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &c
	m.sets++
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get() (Credential, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil || m.cred.IsZero() {
		return Credential{}, false
	}
	return *m.cred, true
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}

// SetCount returns how many times Set has been called.
func (m *MemoryStore) SetCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}
