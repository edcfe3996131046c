// Package announce implements a per-session store of messages to be displayed to the user.
//
// Messages are grouped in categories (e.g. "success", "error"). Callers add messages while handling a request
// and a later stage, typically the view renderer, retrieves and clears them. The messages live in a session
// provided by the host; the store only keeps the ordered list of categories it knows about.
package announce

import (
	"fmt"

	"github.com/ProtonMail/announce/reporter"
	"github.com/ProtonMail/announce/session"
	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

const (
	DefaultCategory   = "message"
	DefaultSessionKey = "user_message_store"
)

// Store manages the messages kept under one key of a session.
//
// Every operation reads the whole collection from the session, and every mutating operation writes it back.
// If the session implements session.Updater the read and the write happen atomically; otherwise two stores
// working on the same session concurrently may overwrite each other's changes.
//
// A Store is meant to be used by a single request and is not safe for concurrent use.
type Store struct {
	sess       session.Session
	key        string
	categories []string
	codec      Codec
	reporter   reporter.Reporter
	log        *logrus.Entry
}

// New creates a store backed by the given session.
// If the session holds no collection yet, one empty category per configured category is written to it.
// Categories found in the session that were not configured are appended to the known categories.
func New(sess session.Session, opts ...Option) (*Store, error) {
	store := &Store{
		sess:       sess,
		key:        DefaultSessionKey,
		categories: []string{DefaultCategory},
		codec:      ProtoCodec{},
		reporter:   reporter.NullReporter{},
	}

	for _, opt := range opts {
		opt.config(store)
	}

	if store.log == nil {
		store.log = logrus.WithField("pkg", "announce")
	}

	store.log = store.log.WithField("sessionKey", store.key)

	coll, err := store.read()
	if err != nil {
		return nil, err
	}

	if !coll.IsEmpty() {
		return store, nil
	}

	store.log.WithField("categories", store.categories).Debug("Initializing message collection")

	if err := store.update(func(coll *Collection) {
		for _, category := range store.categories {
			coll.Ensure(category)
		}
	}); err != nil {
		return nil, err
	}

	return store, nil
}

// Add adds a message to the given category, creating the category if it is not known yet.
//
// If data is given, message is a printf-style template that is applied to the data; a single slice value is
// used as the argument list. If the data does not fit the template an error wrapping ErrFormatting is returned,
// the template is reported and nothing is stored.
// Adding text that the category already holds does not create a duplicate.
func (store *Store) Add(category, message string, data ...any) error {
	if len(data) > 0 {
		formatted, err := format(message, data...)
		if err != nil {
			store.log.WithError(err).WithField("category", category).Warn("Message does not fit its template")

			reporter.MessageWithContext(store.reporter, "Message does not fit its template", reporter.Context{
				"sessionKey": store.key,
				"category":   category,
				"template":   message,
			})

			return err
		}

		message = formatted
	}

	return store.AddAll(category, message)
}

// AddAll adds each message to the given category, in order. The messages are not formatted.
func (store *Store) AddAll(category string, messages ...string) error {
	if len(messages) == 0 {
		return nil
	}

	log := store.log.WithField("category", category)

	var tracked bool

	if err := store.update(func(coll *Collection) {
		if tracked = slices.Contains(store.categories, category); !tracked {
			coll.Append(category)
		}

		for _, message := range messages {
			if !coll.Insert(category, message) {
				log.WithField("message", message).Trace("Message already present")
			}
		}
	}); err != nil {
		return err
	}

	if !tracked {
		log.Debug("Tracking new message category")

		store.categories = append(store.categories, category)
	}

	return nil
}

// Clear removes the messages of the given category, or of every known category if category is empty.
// All categories stay known. Clearing a category that is not known yet writes an empty entry for it
// but does not make it known; it is tracked once messages are added to it.
func (store *Store) Clear(category string) error {
	store.log.WithField("category", category).Debug("Clearing messages")

	return store.update(func(coll *Collection) {
		for _, category := range store.expand(category) {
			coll.Reset(category)
		}
	})
}

// Count returns the number of messages in the given category, or in all categories if category is empty.
func (store *Store) Count(category string) (int, error) {
	coll, err := store.read()
	if err != nil {
		return 0, err
	}

	if category == "" {
		return coll.Total(), nil
	}

	return coll.Len(category), nil
}

// Peek returns the messages of the given category without removing them.
// If category is empty, the messages of all categories are returned, grouped by category in the order of
// Categories.
func (store *Store) Peek(category string) ([]string, error) {
	coll, err := store.read()
	if err != nil {
		return nil, err
	}

	return store.collect(coll, category), nil
}

// Get returns the same messages as Peek and removes them from the store.
func (store *Store) Get(category string) ([]string, error) {
	var messages []string

	if err := store.update(func(coll *Collection) {
		messages = store.collect(coll, category)

		for _, category := range store.expand(category) {
			coll.Reset(category)
		}
	}); err != nil {
		return nil, err
	}

	store.log.WithField("category", category).WithField("count", len(messages)).Debug("Consumed messages")

	return messages, nil
}

// HasMessages returns true if Count would return a positive number.
func (store *Store) HasMessages(category string) (bool, error) {
	count, err := store.Count(category)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Categories returns the known categories in retrieval order.
func (store *Store) Categories() []string {
	return slices.Clone(store.categories)
}

// SessionKey returns the session key the collection is stored under.
func (store *Store) SessionKey() string {
	return store.key
}

// expand returns the categories an operation on category applies to.
func (store *Store) expand(category string) []string {
	if category == "" {
		return store.categories
	}

	return []string{category}
}

func (store *Store) collect(coll *Collection, category string) []string {
	messages := []string{}

	for _, list := range xslices.Map(store.expand(category), coll.Messages) {
		messages = append(messages, list...)
	}

	return messages
}

func (store *Store) read() (*Collection, error) {
	data, err := store.sess.Load(store.key)
	if err != nil {
		return nil, err
	}

	coll, err := store.decode(data)
	if err != nil {
		return nil, err
	}

	store.track(coll)

	return coll, nil
}

func (store *Store) update(fn func(*Collection)) error {
	return session.Update(store.sess, store.key, func(data []byte) ([]byte, error) {
		coll, err := store.decode(data)
		if err != nil {
			return nil, err
		}

		store.track(coll)

		fn(coll)

		return store.codec.Marshal(coll)
	})
}

func (store *Store) decode(data []byte) (*Collection, error) {
	if len(data) == 0 {
		return NewCollection(), nil
	}

	coll, err := store.codec.Unmarshal(data)
	if err != nil {
		store.log.WithError(err).Error("Failed to decode message collection")

		reporter.ExceptionWithContext(store.reporter, "Failed to decode message collection", reporter.Context{
			"sessionKey": store.key,
			"error":      err.Error(),
		})

		return nil, fmt.Errorf("%w: %v", ErrCorruptCollection, err)
	}

	return coll, nil
}

// track appends the categories of coll that hold messages and that the store does not know yet,
// in their stored order. Empty entries left by clearing an unknown category are not tracked.
func (store *Store) track(coll *Collection) {
	for _, category := range coll.Categories() {
		if coll.Len(category) > 0 && !slices.Contains(store.categories, category) {
			store.categories = append(store.categories, category)
		}
	}
}
