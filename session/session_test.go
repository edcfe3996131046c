package session_test

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/ProtonMail/announce/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestInMemorySession(t *testing.T) {
	sess := session.NewInMemorySession()
	defer func() { require.NoError(t, sess.Close()) }()

	testSession(t, sess)
	testSessionUpdate(t, sess)
}

func TestInMemoryCopiesData(t *testing.T) {
	sess := session.NewInMemorySession()

	data := []byte("literal")
	require.NoError(t, sess.Save("key", data))

	data[0] = 'L'

	require.Equal(t, []byte("literal"), must(sess.Load("key")))
}

func TestInMemoryBuilderSharesSessions(t *testing.T) {
	builder := &session.InMemoryBuilder{}

	sess1, err := builder.New("", "session1", nil)
	require.NoError(t, err)

	sess2, err := builder.New("", "session1", nil)
	require.NoError(t, err)

	other, err := builder.New("", "session2", nil)
	require.NoError(t, err)

	require.NoError(t, sess1.Save("key", []byte("value")))
	require.NoError(t, sess1.Close())

	require.Equal(t, []byte("value"), must(sess2.Load("key")))
	require.Nil(t, must(other.Load("key")))

	require.NoError(t, builder.Delete("", "session1"))

	sess3, err := builder.New("", "session1", nil)
	require.NoError(t, err)
	require.Nil(t, must(sess3.Load("key")))
}

func TestOnDiskSession(t *testing.T) {
	sess, err := session.NewOnDiskSession(
		t.TempDir(),
		[]byte("pass"),
		session.WithSemaphore(session.NewSemaphore(runtime.NumCPU())),
	)
	require.NoError(t, err)

	testSession(t, sess)
}

func TestOnDiskSessionCompressed(t *testing.T) {
	sess, err := session.NewOnDiskSession(
		t.TempDir(),
		[]byte("pass"),
		session.WithCompressor(session.ZLibCompressor{}),
	)
	require.NoError(t, err)

	testSession(t, sess)
}

func TestOnDiskSessionPGP(t *testing.T) {
	sess, err := session.NewOnDiskSession(
		t.TempDir(),
		nil,
		session.WithEncryptor(session.NewPGPEncryptor([]byte("pass"))),
		session.WithCompressor(session.ZLibCompressor{}),
	)
	require.NoError(t, err)

	testSession(t, sess)
}

func TestOnDiskSessionLargeValue(t *testing.T) {
	sess, err := session.NewOnDiskSession(t.TempDir(), []byte("pass"))
	require.NoError(t, err)

	data := make([]byte, 1024*1204)
	{
		_, err := rand.Read(data) //nolint:gosec
		require.NoError(t, err)
	}

	require.NoError(t, sess.Save("key", data))

	read, err := sess.Load("key")
	require.NoError(t, err)
	require.True(t, bytes.Equal(read, data))
}

func TestOnDiskSessionWrongPassphrase(t *testing.T) {
	dir := t.TempDir()

	sess, err := session.NewOnDiskSession(dir, []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, sess.Save("key", []byte("value")))

	other, err := session.NewOnDiskSession(dir, []byte("other"))
	require.NoError(t, err)

	_, err = other.Load("key")
	require.Error(t, err)
}

func TestOnDiskSessionReadFailsOnShortFile(t *testing.T) {
	dir := t.TempDir()

	sess, err := session.NewOnDiskSession(dir, []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, sess.Save("key", []byte("value")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("x"), 0o600))

	_, err = sess.Load("key")
	require.ErrorIs(t, err, session.ErrSealedDataTooShort)
}

func TestOnDiskSessionBuilder(t *testing.T) {
	dir := t.TempDir()
	builder := &session.OnDiskSessionBuilder{Options: []session.Option{session.WithCompressor(session.ZLibCompressor{})}}

	sess, err := builder.New(dir, "session", []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, sess.Save("key", []byte("value")))
	require.NoError(t, sess.Close())

	sess, err = builder.New(dir, "session", []byte("pass"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), must(sess.Load("key")))

	require.NoError(t, builder.Delete(dir, "session"))
	require.NoDirExists(t, filepath.Join(dir, "session"))
}

func TestOnDiskSessionBuilderSharesSemaphore(t *testing.T) {
	dir := t.TempDir()
	sem := session.NewSemaphore(1)
	builder := &session.OnDiskSessionBuilder{Semaphore: sem}

	sess, err := builder.New(dir, "session", []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, sess.Save("key", []byte("value")))

	// While the semaphore is blocked the session cannot touch its files.
	sem.Block()

	done := make(chan []byte)

	go func() {
		data, _ := sess.Load("key")
		done <- data
	}()

	select {
	case <-done:
		require.Fail(t, "load ran while the semaphore was blocked")

	case <-time.After(50 * time.Millisecond):
	}

	sem.Unblock()

	require.Equal(t, []byte("value"), <-done)

	require.NoError(t, builder.Delete(dir, "session"))
	require.NoDirExists(t, filepath.Join(dir, "session"))
}

func TestBadgerSession(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sess, err := session.NewBadgerSession(t.TempDir(), uuid.NewString(), []byte("pass"))
	require.NoError(t, err)

	testSession(t, sess)
	testSessionUpdate(t, sess)

	require.NoError(t, sess.Close())
}

func TestBadgerSessionPersists(t *testing.T) {
	dir, sessionID := t.TempDir(), uuid.NewString()
	builder := &session.BadgerSessionBuilder{}

	sess, err := builder.New(dir, sessionID, []byte("pass"))
	require.NoError(t, err)
	require.NoError(t, sess.Save("key", []byte("value")))
	require.NoError(t, sess.Close())

	sess, err = builder.New(dir, sessionID, []byte("pass"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), must(sess.Load("key")))
	require.NoError(t, sess.Close())

	require.NoError(t, builder.Delete(dir, sessionID))
	require.NoDirExists(t, filepath.Join(dir, sessionID))
}

func TestSQLiteSession(t *testing.T) {
	sess, err := session.NewSQLiteSession(t.TempDir(), uuid.NewString())
	require.NoError(t, err)

	testSession(t, sess)
	testSessionUpdate(t, sess)

	require.NoError(t, sess.Close())
}

func TestSQLiteSessionPersists(t *testing.T) {
	dir, sessionID := t.TempDir(), uuid.NewString()
	builder := &session.SQLiteSessionBuilder{}

	sess, err := builder.New(dir, sessionID, nil)
	require.NoError(t, err)
	require.NoError(t, sess.Save("key", []byte("value")))
	require.NoError(t, sess.Close())

	sess, err = builder.New(dir, sessionID, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("value"), must(sess.Load("key")))
	require.NoError(t, sess.Close())

	require.NoError(t, builder.Delete(dir, sessionID))
	require.NoFileExists(t, filepath.Join(dir, sessionID+".db"))
}

func TestUpdateWithoutUpdater(t *testing.T) {
	sess := &plainSession{data: make(map[string][]byte)}

	require.NoError(t, session.Update(sess, "key", func(b []byte) ([]byte, error) {
		require.Nil(t, b)
		return []byte("1"), nil
	}))

	require.NoError(t, session.Update(sess, "key", func(b []byte) ([]byte, error) {
		return append(b, '2'), nil
	}))

	require.Equal(t, []byte("12"), sess.data["key"])
}

func testSession(t *testing.T, sess session.Session) {
	require.Nil(t, must(sess.Load("missing")))

	require.NoError(t, sess.Save("key1", []byte("literal1")))
	require.NoError(t, sess.Save("key2", []byte("literal2")))
	require.NoError(t, sess.Save("key3", []byte("literal3")))

	require.Equal(t, []byte("literal1"), must(sess.Load("key1")))
	require.Equal(t, []byte("literal2"), must(sess.Load("key2")))
	require.Equal(t, []byte("literal3"), must(sess.Load("key3")))

	require.NoError(t, sess.Save("key1", []byte("overwritten")))
	require.Equal(t, []byte("overwritten"), must(sess.Load("key1")))
}

// testSessionUpdate checks that concurrent updates of one key are not lost.
func testSessionUpdate(t *testing.T, sess session.Session) {
	const workers = 32

	var wg sync.WaitGroup

	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			errs[i] = session.Update(sess, "counter", func(b []byte) ([]byte, error) {
				return append(b, 'x'), nil
			})
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, must(sess.Load("counter")), workers)
}

type plainSession struct {
	data map[string][]byte
}

func (s *plainSession) Load(key string) ([]byte, error) {
	return s.data[key], nil
}

func (s *plainSession) Save(key string, data []byte) error {
	s.data[key] = data
	return nil
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}

	return val
}
