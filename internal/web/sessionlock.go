package web

import "sync"

// sessionLocks serializes requests of one session: each request works on its
// own copy loaded from the store, so overlapping load/save pairs would drop
// each other's writes.
type sessionLocks struct {
	mutex sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mutex sync.Mutex
	refs  int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock blocks until the session is free and returns the matching unlock.
func (l *sessionLocks) Lock(id string) func() {
	l.mutex.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sessionLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mutex.Unlock()

	lock.mutex.Lock()
	return func() {
		lock.mutex.Unlock()

		l.mutex.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mutex.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.locks)
}
