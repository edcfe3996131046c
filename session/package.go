// Package session implements the storage that message stores persist their collections in.
//
// A session holds opaque blobs keyed by name. Backends may keep them in memory, in encrypted files on disk,
// in a Badger database or in a SQLite database.
package session

//go:generate mockgen -destination mock_session/session.go . Session,Backend,Updater
