package announce

import (
	"errors"
)

var (
	// ErrFormatting is returned when the data given to Add does not fit the message template.
	ErrFormatting = errors.New("message does not fit its template")

	// ErrCorruptCollection is returned when the blob stored in the session cannot be decoded.
	ErrCorruptCollection = errors.New("stored message collection is corrupt")
)

// IsFormattingError returns true if the error is ErrFormatting.
func IsFormattingError(err error) bool {
	return errors.Is(err, ErrFormatting)
}

// IsCorruptCollection returns true if the error is ErrCorruptCollection.
func IsCorruptCollection(err error) bool {
	return errors.Is(err, ErrCorruptCollection)
}
