package session

// Session is the storage capability a message store needs.
// Load returns nil data and no error if nothing is stored under the key.
type Session interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// Updater is implemented by sessions that can perform a read-modify-write of a single key atomically.
type Updater interface {
	Update(key string, fn func([]byte) ([]byte, error)) error
}

// Backend is a session that owns resources which must be released.
type Backend interface {
	Session

	Close() error
}

type Builder interface {
	New(dir, sessionID string, passphrase []byte) (Backend, error)
	Delete(dir, sessionID string) error
}

// Update replaces the data stored under key with the result of fn.
// If sess implements Updater the round trip is atomic, otherwise it is a plain Load followed by Save.
func Update(sess Session, key string, fn func([]byte) ([]byte, error)) error {
	if updater, ok := sess.(Updater); ok {
		return updater.Update(key, fn)
	}

	data, err := sess.Load(key)
	if err != nil {
		return err
	}

	res, err := fn(data)
	if err != nil {
		return err
	}

	return sess.Save(key, res)
}
