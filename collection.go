package announce

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// messageSet maps each message to the name of the category it belongs to.
type messageSet = orderedmap.OrderedMap[string, string]

// Collection maps categories to the messages stored in them.
// Both categories and messages keep the order in which they were first inserted.
type Collection struct {
	categories *orderedmap.OrderedMap[string, *messageSet]
}

func NewCollection() *Collection {
	return &Collection{
		categories: orderedmap.New[string, *messageSet](),
	}
}

// Ensure creates an empty entry for the category if it has none yet. It returns true if the entry was created.
func (c *Collection) Ensure(category string) bool {
	if _, ok := c.categories.Get(category); ok {
		return false
	}

	c.categories.Set(category, orderedmap.New[string, string]())

	return true
}

// Append moves the category to the end of the collection with an empty entry.
// A category already holding messages is left in place.
func (c *Collection) Append(category string) {
	if set, ok := c.categories.Get(category); ok {
		if set.Len() > 0 {
			return
		}

		c.categories.Delete(category)
	}

	c.categories.Set(category, orderedmap.New[string, string]())
}

// Insert adds the message to the category. It returns false if the category already held the same text.
func (c *Collection) Insert(category, message string) bool {
	c.Ensure(category)

	set, _ := c.categories.Get(category)

	_, present := set.Set(message, category)

	return !present
}

// Reset empties the category without changing its position.
func (c *Collection) Reset(category string) {
	c.categories.Set(category, orderedmap.New[string, string]())
}

func (c *Collection) Messages(category string) []string {
	set, ok := c.categories.Get(category)
	if !ok {
		return []string{}
	}

	messages := make([]string, 0, set.Len())

	for pair := set.Oldest(); pair != nil; pair = pair.Next() {
		messages = append(messages, pair.Key)
	}

	return messages
}

func (c *Collection) Len(category string) int {
	set, ok := c.categories.Get(category)
	if !ok {
		return 0
	}

	return set.Len()
}

// Total returns the number of messages over all categories.
func (c *Collection) Total() int {
	var total int

	for pair := c.categories.Oldest(); pair != nil; pair = pair.Next() {
		total += pair.Value.Len()
	}

	return total
}

func (c *Collection) Categories() []string {
	categories := make([]string, 0, c.categories.Len())

	for pair := c.categories.Oldest(); pair != nil; pair = pair.Next() {
		categories = append(categories, pair.Key)
	}

	return categories
}

// IsEmpty reports whether the collection has no categories at all.
func (c *Collection) IsEmpty() bool {
	return c.categories.Len() == 0
}
