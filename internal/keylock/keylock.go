// Package keylock serializes work per string key. The server takes a lock
// per order id around transitions and payment recording, and per user login
// around loyalty recalculation, so concurrent requests on the same entity
// cannot interleave. Operations on different keys proceed in parallel.
package keylock

import "sync"

type KeyLock struct {
	locks sync.Map // key -> *sync.Mutex
}

func New() *KeyLock {
	return &KeyLock{}
}

// Lock acquires the mutex for key and returns the unlock func.
//
//	unlock := locks.Lock(orderID)
//	defer unlock()
func (l *KeyLock) Lock(key string) func() {
	m, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
