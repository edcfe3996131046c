package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/announce/session"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultConfig, cfg)

	path := filepath.Join(t.TempDir(), "announce.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: [success, error]\nsession_key: flash\n"), 0o600))

	cfg, err = loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, []string{"success", "error"}, cfg.Categories)
	require.Equal(t, "flash", cfg.SessionKey)

	require.NoError(t, os.WriteFile(path, []byte("categories: {"), 0o600))

	_, err = loadConfig(path)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	sess := session.NewInMemorySession()

	require.NoError(t, run(sess, defaultConfig))

	// Everything the demo added has been consumed again.
	data, err := sess.Load("user_message_store")
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestBuildersOpenSessions(t *testing.T) {
	dir := t.TempDir()

	for name, builder := range builders {
		t.Run(name, func(t *testing.T) {
			sess, err := builder.New(filepath.Join(dir, name), "session", []byte("pass"))
			require.NoError(t, err)

			require.NoError(t, run(sess, config{Categories: []string{"message"}, SessionKey: "demo"}))
			require.NoError(t, sess.Close())
			require.NoError(t, builder.Delete(filepath.Join(dir, name), "session"))
		})
	}
}
