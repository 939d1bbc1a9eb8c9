package core

// TagCount is a single tag with the number of TODOs carrying it
type TagCount struct {
	Tag   string
	Count int
}

// TagCounter counts tag occurrences and remembers the order tags were first seen in
type TagCounter struct {
	counts map[string]int
	order  []string
}

// NewTagCounter creates an empty tag counter
func NewTagCounter() *TagCounter {
	return &TagCounter{counts: make(map[string]int)}
}

// Add increments the count of every given tag
func (c *TagCounter) Add(tags ...string) {
	for _, tag := range tags {
		if _, ok := c.counts[tag]; !ok {
			c.order = append(c.order, tag)
		}
		c.counts[tag]++
	}
}

// Count returns the number of times tag was added
func (c *TagCounter) Count(tag string) int {
	return c.counts[tag]
}

// Len returns the number of distinct tags
func (c *TagCounter) Len() int {
	return len(c.order)
}

// Entries returns the tag counts in first-seen order
func (c *TagCounter) Entries() []TagCount {
	entries := make([]TagCount, 0, len(c.order))
	for _, tag := range c.order {
		entries = append(entries, TagCount{Tag: tag, Count: c.counts[tag]})
	}
	return entries
}
