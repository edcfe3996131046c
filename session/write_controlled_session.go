package session

import (
	"sync"
	"sync/atomic"
)

type syncRef struct {
	lock    sync.RWMutex
	counter int32
}

// WriteControlledSession ensures that a given key can safely be accessed by multiple readers and only
// one writer. Internally we maintain a list of RWLocks per key.
// Update holds the key's write lock for the whole read-modify-write, so wrapping a session without
// atomic updates of its own makes concurrent message stores on that session safe.
type WriteControlledSession struct {
	impl Session

	lock       sync.Mutex
	entryTable map[string]*syncRef
	lockPool   []*syncRef
}

func NewWriteControlledSession(impl Session) *WriteControlledSession {
	return &WriteControlledSession{
		impl:       impl,
		entryTable: make(map[string]*syncRef),
	}
}

func (w *WriteControlledSession) acquireSyncRef(key string) *syncRef {
	w.lock.Lock()
	defer w.lock.Unlock()

	v, ok := w.entryTable[key]
	if !ok {
		var s *syncRef

		if len(w.lockPool) != 0 {
			s = w.lockPool[0]
			s.counter = 1
			w.lockPool = w.lockPool[1:]
		} else {
			s = &syncRef{counter: 1}
		}

		w.entryTable[key] = s

		return s
	}

	atomic.AddInt32(&v.counter, 1)

	return v
}

func (w *WriteControlledSession) releaseSyncRef(key string, ref *syncRef) {
	if atomic.AddInt32(&ref.counter, -1) <= 0 {
		w.lock.Lock()
		defer w.lock.Unlock()

		if atomic.LoadInt32(&ref.counter) <= 0 {
			delete(w.entryTable, key)
			w.lockPool = append(w.lockPool, ref)
		}
	}
}

func (w *WriteControlledSession) Load(key string) ([]byte, error) {
	syncRef := w.acquireSyncRef(key)
	defer w.releaseSyncRef(key, syncRef)

	syncRef.lock.RLock()
	defer syncRef.lock.RUnlock()

	return w.impl.Load(key)
}

func (w *WriteControlledSession) Save(key string, data []byte) error {
	syncRef := w.acquireSyncRef(key)
	defer w.releaseSyncRef(key, syncRef)

	syncRef.lock.Lock()
	defer syncRef.lock.Unlock()

	return w.impl.Save(key, data)
}

func (w *WriteControlledSession) Update(key string, fn func([]byte) ([]byte, error)) error {
	syncRef := w.acquireSyncRef(key)
	defer w.releaseSyncRef(key, syncRef)

	syncRef.lock.Lock()
	defer syncRef.lock.Unlock()

	data, err := w.impl.Load(key)
	if err != nil {
		return err
	}

	res, err := fn(data)
	if err != nil {
		return err
	}

	return w.impl.Save(key, res)
}

func (w *WriteControlledSession) Close() error {
	if closer, ok := w.impl.(Backend); ok {
		return closer.Close()
	}

	return nil
}

type WriteControlledSessionBuilder struct {
	builder Builder
}

func NewWriteControlledSessionBuilder(builder Builder) *WriteControlledSessionBuilder {
	return &WriteControlledSessionBuilder{builder: builder}
}

func (w *WriteControlledSessionBuilder) New(dir, sessionID string, passphrase []byte) (Backend, error) {
	impl, err := w.builder.New(dir, sessionID, passphrase)
	if err != nil {
		return nil, err
	}

	return NewWriteControlledSession(impl), nil
}

func (w *WriteControlledSessionBuilder) Delete(dir, sessionID string) error {
	return w.builder.Delete(dir, sessionID)
}
