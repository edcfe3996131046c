package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/sirupsen/logrus"
)

// maxConflictRetries bounds how often Update retries a transaction that lost a write conflict.
const maxConflictRetries = 64

type BadgerSession struct {
	db       *badger.DB
	gcExitCh chan struct{}
	wg       sync.WaitGroup
}

func NewBadgerSession(path string, sessionID string, passphrase []byte) (*BadgerSession, error) {
	db, err := badger.Open(badger.DefaultOptions(filepath.Join(path, sessionID)).
		WithLogger(logrus.StandardLogger()).
		WithLoggingLevel(badger.ERROR).
		WithEncryptionKey(hash(passphrase)).
		WithIndexCacheSize(16 * 1024 * 1024),
	)
	if err != nil {
		return nil, err
	}

	sess := &BadgerSession{
		db:       db,
		gcExitCh: make(chan struct{}),
	}

	sess.wg.Add(1)

	go sess.startGCCollector()

	return sess, nil
}

func (b *BadgerSession) startGCCollector() {
	// Garbage collection needs to be run manually by us at some point.
	// See https://dgraph.io/docs/badger/get-started/#garbage-collection for more details.
	defer b.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			{
			again:
				if err := b.db.RunValueLogGC(0.5); err == nil {
					goto again
				}
			}

		case <-b.gcExitCh:
			return
		}
	}
}

func (b *BadgerSession) Load(key string) ([]byte, error) {
	var data []byte

	if err := b.db.View(func(txn *badger.Txn) error {
		res, err := get(txn, key)
		if err != nil {
			return err
		}

		data = res

		return nil
	}); err != nil {
		return nil, err
	}

	return data, nil
}

func (b *BadgerSession) Save(key string, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Update runs fn inside a read-write transaction, retrying when a concurrent writer committed first.
func (b *BadgerSession) Update(key string, fn func([]byte) ([]byte, error)) error {
	for i := 0; ; i++ {
		err := b.db.Update(func(txn *badger.Txn) error {
			data, err := get(txn, key)
			if err != nil {
				return err
			}

			res, err := fn(data)
			if err != nil {
				return err
			}

			return txn.Set([]byte(key), res)
		})

		if errors.Is(err, badger.ErrConflict) && i < maxConflictRetries {
			logrus.WithField("attempt", i+1).Debug("Retrying conflicting session update")
			continue
		}

		return err
	}
}

func (b *BadgerSession) Close() error {
	close(b.gcExitCh)
	b.wg.Wait()

	return b.db.Close()
}

func get(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item.ValueCopy(nil)
}

type BadgerSessionBuilder struct{}

func (*BadgerSessionBuilder) New(directory, sessionID string, encryptionPassphrase []byte) (Backend, error) {
	return NewBadgerSession(directory, sessionID, encryptionPassphrase)
}

func (*BadgerSessionBuilder) Delete(directory, sessionID string) error {
	return os.RemoveAll(filepath.Join(directory, sessionID))
}
