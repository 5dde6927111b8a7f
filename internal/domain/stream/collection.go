package stream

// Collection is an insertion-ordered set of streams keyed by login handle.
// The first stream seen for a login wins.
type Collection struct {
	seen  map[string]struct{}
	items []Stream
}

// maxPrealloc bounds the capacity hint; beyond it the collection grows on demand.
const maxPrealloc = 100

// NewCollection creates an empty collection sized for capacity entries.
// capacity is only a hint and may come from client input.
func NewCollection(capacity int) *Collection {
	capacity = max(min(capacity, maxPrealloc), 0)
	return &Collection{
		seen:  make(map[string]struct{}, capacity),
		items: make([]Stream, 0, capacity),
	}
}

// Add inserts s unless its login is already present. Reports whether s was added.
func (c *Collection) Add(s Stream) bool {
	if _, dup := c.seen[s.UserLogin]; dup {
		return false
	}
	c.seen[s.UserLogin] = struct{}{}
	c.items = append(c.items, s)
	return true
}

// Len returns the number of collected streams.
func (c *Collection) Len() int { return len(c.items) }

// Items returns streams in insertion order.
func (c *Collection) Items() []Stream { return c.items }
