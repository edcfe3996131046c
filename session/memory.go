package session

import (
	"sync"
)

type inMemorySession struct {
	data map[string][]byte
	lock sync.RWMutex
}

func NewInMemorySession() Backend {
	return &inMemorySession{
		data: make(map[string][]byte),
	}
}

func (c *inMemorySession) Load(key string) ([]byte, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	data, ok := c.data[key]
	if !ok {
		return nil, nil
	}

	return clone(data), nil
}

func (c *inMemorySession) Save(key string, data []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.data[key] = clone(data)

	return nil
}

func (c *inMemorySession) Update(key string, fn func([]byte) ([]byte, error)) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	res, err := fn(clone(c.data[key]))
	if err != nil {
		return err
	}

	c.data[key] = clone(res)

	return nil
}

func (c *inMemorySession) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.data = make(map[string][]byte)

	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}

	return append([]byte{}, b...)
}

// InMemoryBuilder hands out one in-memory session per session ID.
// Asking twice for the same ID returns the same session, the way a host keeps a session alive across requests.
type InMemoryBuilder struct {
	sessions map[string]Backend
	lock     sync.Mutex
}

func (b *InMemoryBuilder) New(_, sessionID string, _ []byte) (Backend, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.sessions == nil {
		b.sessions = make(map[string]Backend)
	}

	sess, ok := b.sessions[sessionID]
	if !ok {
		sess = &sharedSession{Backend: NewInMemorySession()}
		b.sessions[sessionID] = sess
	}

	return sess, nil
}

func (b *InMemoryBuilder) Delete(_, sessionID string) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if sess, ok := b.sessions[sessionID]; ok {
		delete(b.sessions, sessionID)

		return sess.(*sharedSession).Backend.Close()
	}

	return nil
}

// sharedSession keeps a builder-owned session alive when one of its users closes it.
type sharedSession struct {
	Backend
}

func (s *sharedSession) Update(key string, fn func([]byte) ([]byte, error)) error {
	return Update(s.Backend, key, fn)
}

func (*sharedSession) Close() error {
	return nil
}
