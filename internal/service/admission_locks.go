package service

import "sync"

// eventLocks serializes capacity-affecting operations per event. Distinct
// events never contend with each other; a batch moderation call holds its
// event's lock for the whole batch so the remaining-capacity snapshot stays
// valid for every item.
//
// Entries are kept for the process lifetime. The map grows with the number of
// distinct events seen by this instance, which is bounded by the catalogue
// size rather than request volume.
type eventLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEventLocks() *eventLocks {
	return &eventLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for eventID and returns its unlock function
func (e *eventLocks) Lock(eventID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[eventID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
