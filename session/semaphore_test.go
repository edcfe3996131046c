package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestSemaphore(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sem := NewSemaphore(4)

	// Block the semaphore so that tasks wait until we unblock it.
	sem.Block()

	// Collect results in a list.
	var res list[int]

	// Start some jobs; they can't lock the semaphore yet because it is blocked.
	wait := wait(func() {
		var wg sync.WaitGroup

		for i := 1; i <= 4; i++ {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				sem.Lock()
				defer sem.Unlock()

				res.insert(i)
			}(i)
		}

		wg.Wait()
	})

	// The semaphore is blocked so none of the tasks should have executed yet.
	assert.Equal(t, []int{}, res.items())

	// Unblock the semaphore so that blocked tasks can execute.
	sem.Unblock()

	// Wait for the jobs to finish.
	wait()

	// The jobs should have executed now.
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, res.items())
}

func TestSemaphoreBlockWaitsForHolders(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sem := NewSemaphore(2)

	sem.Lock()

	var blocked int32

	wait := wait(func() {
		sem.Block()
		atomic.StoreInt32(&blocked, 1)
		sem.Unblock()
	})

	// The holder has not unlocked yet.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&blocked))

	sem.Unlock()

	wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&blocked))
}

func wait(fn func()) func() {
	var wg sync.WaitGroup

	wg.Add(1)

	go func() { defer wg.Done(); fn() }()

	return wg.Wait
}

type list[T any] struct {
	val []T
	mut sync.Mutex
}

func (l *list[T]) insert(val T) {
	l.mut.Lock()
	defer l.mut.Unlock()

	l.val = append(l.val, val)
}

func (l *list[T]) items() []T {
	l.mut.Lock()
	defer l.mut.Unlock()

	items := append([]T{}, l.val...)

	return items
}
