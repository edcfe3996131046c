package session

import (
	"sync"
)

// Semaphore implements a type used to limit concurrent operations.
type Semaphore struct {
	ch chan struct{}
	rw sync.RWMutex
}

// NewSemaphore constructs a new semaphore with the given limit.
func NewSemaphore(max int) *Semaphore {
	return &Semaphore{ch: make(chan struct{}, max)}
}

// Lock locks the semaphore, waiting first until it is possible.
func (sem *Semaphore) Lock() {
	sem.rw.RLock()
	sem.ch <- struct{}{}
}

// Unlock unlocks the semaphore.
func (sem *Semaphore) Unlock() {
	sem.rw.RUnlock()
	<-sem.ch
}

// Block waits until every holder has unlocked the semaphore and prevents it from being locked again.
func (sem *Semaphore) Block() {
	sem.rw.Lock()
}

// Unblock allows the semaphore to be locked again.
func (sem *Semaphore) Unblock() {
	sem.rw.Unlock()
}
