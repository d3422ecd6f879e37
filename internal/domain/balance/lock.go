package balance

import "sync"

// dateLock serializes consolidations of the same calendar day. Different
// dates never contend. Entries are kept for the process lifetime; the key
// space is bounded by the number of distinct dates ever consolidated.
type dateLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDateLock() *dateLock {
	return &dateLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a date key, creating it on first use, and
// returns the unlock function.
func (d *dateLock) Lock(dateKey string) func() {
	d.mu.Lock()
	m, ok := d.locks[dateKey]
	if !ok {
		m = &sync.Mutex{}
		d.locks[dateKey] = m
	}
	d.mu.Unlock()

	m.Lock()
	return m.Unlock
}
