package persistence

import (
	"maps"
	"sort"

	"github.com/asaidimu/go-hifadhi/core/schema"
)

// dataCache is the authoritative in-memory working set: id to document, with
// insertion order preserved for iteration. Every key equals its document's
// id field.
type dataCache struct {
	order []string
	docs  map[string]schema.Document
}

func newDataCache() *dataCache {
	return &dataCache{docs: make(map[string]schema.Document)}
}

func (c *dataCache) Get(id string) (schema.Document, bool) {
	doc, ok := c.docs[id]
	return doc, ok
}

// IDs returns document ids in insertion order. The returned slice is owned
// by the cache.
func (c *dataCache) IDs() []string {
	return c.order
}

func (c *dataCache) Put(id string, doc schema.Document) {
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = doc
}

func (c *dataCache) Delete(id string) {
	if _, exists := c.docs[id]; !exists {
		return
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *dataCache) Len() int { return len(c.docs) }

// All returns the cached documents in iteration order.
func (c *dataCache) All() []schema.Document {
	all := make([]schema.Document, 0, len(c.docs))
	for _, id := range c.order {
		all = append(all, c.docs[id])
	}
	return all
}

// Snapshot exposes the raw id-to-document map for serialization and index
// rebuilds. Callers must not mutate it.
func (c *dataCache) Snapshot() map[string]schema.Document {
	return c.docs
}

// Load replaces the cache wholesale, as on initialize or transaction abort.
// The JSON object form loses insertion order, so loaded ids iterate in
// sorted order for determinism.
func (c *dataCache) Load(docs map[string]schema.Document) {
	if docs == nil {
		docs = make(map[string]schema.Document)
	}
	c.docs = docs
	c.order = make([]string, 0, len(docs))
	for id := range docs {
		c.order = append(c.order, id)
	}
	sort.Strings(c.order)
}

func (c *dataCache) Reset() {
	c.docs = make(map[string]schema.Document)
	c.order = nil
}

// cloneDocument copies a document one level deep. Stored documents are never
// aliased to caller-owned maps.
func cloneDocument(doc schema.Document) schema.Document {
	clone := make(schema.Document, len(doc))
	maps.Copy(clone, doc)
	return clone
}
