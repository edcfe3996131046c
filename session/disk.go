package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

type onDiskSession struct {
	path string
	enc  Encryptor
	cmp  Compressor
	sem  *Semaphore
}

// NewOnDiskSession stores each key in its own file below path, named after the SHA-256 of the key.
// Files are sealed with an AES-GCM key derived from pass unless WithEncryptor is given.
func NewOnDiskSession(path string, pass []byte, opt ...Option) (Backend, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, err
	}

	enc, err := NewAESEncryptor(pass)
	if err != nil {
		return nil, err
	}

	sess := &onDiskSession{
		path: path,
		enc:  enc,
	}

	for _, opt := range opt {
		opt.config(sess)
	}

	return sess, nil
}

func (c *onDiskSession) Load(key string) ([]byte, error) {
	if c.sem != nil {
		c.sem.Lock()
		defer c.sem.Unlock()
	}

	enc, err := os.ReadFile(c.keyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	b, err := c.enc.Decrypt(enc)
	if err != nil {
		logrus.WithError(err).WithField("path", c.path).Error("Failed to decrypt session file")
		return nil, err
	}

	if c.cmp != nil {
		dec, err := c.cmp.Decompress(b)
		if err != nil {
			return nil, err
		}

		b = dec
	}

	return b, nil
}

func (c *onDiskSession) Save(key string, b []byte) error {
	if c.sem != nil {
		c.sem.Lock()
		defer c.sem.Unlock()
	}

	if c.cmp != nil {
		enc, err := c.cmp.Compress(b)
		if err != nil {
			return err
		}

		b = enc
	}

	enc, err := c.enc.Encrypt(b)
	if err != nil {
		return err
	}

	// Readers must never observe a partially written file.
	tmp := c.keyPath(key) + ".tmp"

	if err := os.WriteFile(tmp, enc, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, c.keyPath(key))
}

func (c *onDiskSession) Close() error {
	return nil
}

func (c *onDiskSession) keyPath(key string) string {
	return filepath.Join(c.path, hashString(key))
}

// OnDiskSessionBuilder opens on-disk sessions below a common directory.
// If Semaphore is set, it is shared by every session the builder opens and Delete waits for their
// in-flight file operations to finish before removing anything.
type OnDiskSessionBuilder struct {
	Options   []Option
	Semaphore *Semaphore
}

func (b *OnDiskSessionBuilder) New(path, sessionID string, passphrase []byte) (Backend, error) {
	opts := b.Options

	if b.Semaphore != nil {
		opts = append(slices.Clone(opts), WithSemaphore(b.Semaphore))
	}

	return NewOnDiskSession(filepath.Join(path, sessionID), passphrase, opts...)
}

func (b *OnDiskSessionBuilder) Delete(path, sessionID string) error {
	if b.Semaphore != nil {
		b.Semaphore.Block()
		defer b.Semaphore.Unblock()
	}

	return os.RemoveAll(filepath.Join(path, sessionID))
}
