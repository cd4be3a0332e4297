package pipeline

import (
	"container/list"
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/jtab/internal/input"
	"github.com/jacoelho/jtab/internal/value"
)

// ErrIndexRange reports a record index outside the index.
var ErrIndexRange = errors.New("record index out of range")

// DefaultCacheSize is the number of decoded records an Index keeps.
const DefaultCacheSize = 1000

// Index gives random access to records of seekable storage by position.
type Index struct {
	r       io.ReaderAt
	offsets []int64
	cache   *rowCache
}

// NewIndex serves the records starting at offsets. cacheSize <= 0 uses
// DefaultCacheSize.
func NewIndex(r io.ReaderAt, offsets []int64, cacheSize int) *Index {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Index{r: r, offsets: offsets, cache: newRowCache(cacheSize)}
}

func (ix *Index) Len() int { return len(ix.offsets) }

// Record decodes the i-th record, from cache when possible.
func (ix *Index) Record(i int) (value.Value, error) {
	if i < 0 || i >= len(ix.offsets) {
		return value.Value{}, fmt.Errorf("%w: %d of %d", ErrIndexRange, i, len(ix.offsets))
	}

	if v, ok := ix.cache.get(i); ok {
		return v, nil
	}

	v, err := input.DecodeAt(ix.r, ix.offsets[i])
	if err != nil {
		return value.Value{}, fmt.Errorf("record %d at offset %d: %w", i, ix.offsets[i], err)
	}
	ix.cache.put(i, v)
	return v, nil
}

type cacheEntry struct {
	key   int
	value value.Value
}

// rowCache is a fixed-capacity least-recently-used cache.
type rowCache struct {
	capacity int
	order    *list.List
	items    map[int]*list.Element
}

func newRowCache(capacity int) *rowCache {
	return &rowCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[int]*list.Element, capacity),
	}
}

func (c *rowCache) get(key int) (value.Value, bool) {
	el, ok := c.items[key]
	if !ok {
		return value.Value{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

func (c *rowCache) put(key int, v value.Value) {
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).value = v
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, value: v})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func (c *rowCache) len() int { return c.order.Len() }
