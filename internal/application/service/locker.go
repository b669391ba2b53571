package service

import "sync"

const defaultLockStripes = 64

// KeyedLocker serializes work per task id over a fixed set of mutexes.
// Distinct ids may share a stripe; that only costs throughput.
type KeyedLocker struct {
	stripes []sync.Mutex
}

// NewKeyedLocker creates a locker with n stripes (default 64 when n <= 0)
func NewKeyedLocker(n int) *KeyedLocker {
	if n <= 0 {
		n = defaultLockStripes
	}
	return &KeyedLocker{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for id and returns its release func
func (l *KeyedLocker) Lock(id int64) func() {
	idx := id % int64(len(l.stripes))
	if idx < 0 {
		idx = -idx
	}
	m := &l.stripes[idx]
	m.Lock()
	return m.Unlock
}
