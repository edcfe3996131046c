package announce

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Codec converts a collection to and from the blob stored in the session.
type Codec interface {
	Marshal(*Collection) ([]byte, error)
	Unmarshal([]byte) (*Collection, error)
}

// Field numbers of the protobuf messages
//
//	message Collection { repeated Category categories = 1; }
//	message Category { string name = 1; repeated string messages = 2; }
const (
	collectionCategoriesField protowire.Number = 1
	categoryNameField         protowire.Number = 1
	categoryMessagesField     protowire.Number = 2
)

// ProtoCodec stores collections in protobuf wire format. It is the default codec.
type ProtoCodec struct{}

func (ProtoCodec) Marshal(c *Collection) ([]byte, error) {
	var b []byte

	for pair := c.categories.Oldest(); pair != nil; pair = pair.Next() {
		var category []byte

		category = protowire.AppendTag(category, categoryNameField, protowire.BytesType)
		category = protowire.AppendString(category, pair.Key)

		for msg := pair.Value.Oldest(); msg != nil; msg = msg.Next() {
			category = protowire.AppendTag(category, categoryMessagesField, protowire.BytesType)
			category = protowire.AppendString(category, msg.Key)
		}

		b = protowire.AppendTag(b, collectionCategoriesField, protowire.BytesType)
		b = protowire.AppendBytes(b, category)
	}

	return b, nil
}

func (ProtoCodec) Unmarshal(b []byte) (*Collection, error) {
	c := NewCollection()

	if err := consumeFields(b, func(num protowire.Number, val []byte) error {
		if num != collectionCategoriesField {
			return nil
		}

		return unmarshalCategory(c, val)
	}); err != nil {
		return nil, err
	}

	return c, nil
}

func unmarshalCategory(c *Collection, b []byte) error {
	var (
		name     string
		messages []string
	)

	if err := consumeFields(b, func(num protowire.Number, val []byte) error {
		switch num {
		case categoryNameField:
			name = string(val)

		case categoryMessagesField:
			messages = append(messages, string(val))
		}

		return nil
	}); err != nil {
		return err
	}

	c.Ensure(name)

	for _, msg := range messages {
		c.Insert(name, msg)
	}

	return nil
}

// consumeFields calls fn with every length-delimited field of b. Fields of other wire types are skipped.
func consumeFields(b []byte, fn func(protowire.Number, []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}

		b = b[n:]

		if typ != protowire.BytesType {
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return protowire.ParseError(n)
			}

			b = b[n:]

			continue
		}

		val, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return protowire.ParseError(n)
		}

		if err := fn(num, val); err != nil {
			return err
		}

		b = b[n:]
	}

	return nil
}

// JSONCodec stores collections as an ordered JSON object of the form {"category": {"message": "category"}}.
type JSONCodec struct{}

// Marshal relies on the ordered maps of the collection writing their pairs oldest first.
func (JSONCodec) Marshal(c *Collection) ([]byte, error) {
	return json.Marshal(c.categories)
}

func (JSONCodec) Unmarshal(b []byte) (*Collection, error) {
	dec := json.NewDecoder(bytes.NewReader(b))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	c := NewCollection()

	for dec.More() {
		category, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		c.Ensure(category)

		if err := readMessages(dec, c, category); err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	return c, nil
}

func readMessages(dec *json.Decoder, c *Collection, category string) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	for dec.More() {
		message, err := readKey(dec)
		if err != nil {
			return err
		}

		var owner string

		if err := dec.Decode(&owner); err != nil {
			return err
		}

		c.Insert(category, message)
	}

	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, delim json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok != delim {
		return fmt.Errorf("expected %v, got %v", delim, tok)
	}

	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}

	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}

	return key, nil
}
