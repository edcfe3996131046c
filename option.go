package announce

import (
	"github.com/ProtonMail/announce/reporter"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Option represents a type that can be used to configure the store.
type Option interface {
	config(store *Store)
}

// WithCategories sets the categories the store starts with, in retrieval order. Duplicates are ignored.
// The default is a single category named "message".
func WithCategories(categories ...string) Option {
	return &withCategories{
		categories: categories,
	}
}

type withCategories struct {
	categories []string
}

func (opt withCategories) config(store *Store) {
	store.categories = make([]string, 0, len(opt.categories))

	for _, category := range opt.categories {
		if !slices.Contains(store.categories, category) {
			store.categories = append(store.categories, category)
		}
	}
}

// WithSessionKey sets the session key the collection is stored under instead of the default ("user_message_store").
func WithSessionKey(key string) Option {
	return &withSessionKey{
		key: key,
	}
}

type withSessionKey struct {
	key string
}

func (opt withSessionKey) config(store *Store) {
	if opt.key != "" {
		store.key = opt.key
	}
}

// WithCodec instructs the store to encode its collection with the given codec instead of the default ProtoCodec.
func WithCodec(codec Codec) Option {
	return &withCodec{
		codec: codec,
	}
}

type withCodec struct {
	codec Codec
}

func (opt withCodec) config(store *Store) {
	if opt.codec != nil {
		store.codec = opt.codec
	}
}

// WithReporter instructs the store to report corrupt session data to the given reporter.
func WithReporter(reporter reporter.Reporter) Option {
	return &withReporter{
		reporter: reporter,
	}
}

type withReporter struct {
	reporter reporter.Reporter
}

func (opt withReporter) config(store *Store) {
	store.reporter = opt.reporter
}

// WithLogger instructs the store to log through the given entry.
func WithLogger(log *logrus.Entry) Option {
	return &withLogger{
		log: log,
	}
}

type withLogger struct {
	log *logrus.Entry
}

func (opt withLogger) config(store *Store) {
	if opt.log != nil {
		store.log = opt.log
	}
}
