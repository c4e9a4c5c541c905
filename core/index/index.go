// Package index maintains the secondary index cache: for every unique or
// indexed schema field, a mapping from stringified field value to the ordered
// list of document ids holding that value. Callers never touch the raw maps;
// the RecordAdded, RecordUpdated and RecordRemoved operations keep the
// structure consistent with the data cache on every mutation.
package index

import (
	"go.uber.org/zap"

	"github.com/asaidimu/go-hifadhi/core/schema"
)

// Entries is the serialized shape of the index: field name to stringified
// value to ordered id list. It is what the index file stores.
type Entries map[string]map[string][]string

// Index owns the in-memory secondary index for one collection.
type Index struct {
	schema  *schema.Schema
	entries Entries
	dirty   bool
	logger  *zap.Logger
}

// New creates an empty index for a schema. A nil logger falls back to a
// no-op logger.
func New(sc *schema.Schema, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		schema:  sc,
		entries: make(Entries),
		logger:  logger,
	}
}

// RecordAdded registers a newly stored document under every searchable field
// it carries. Engine-owned fields are skipped.
func (ix *Index) RecordAdded(doc schema.Document, id string) {
	for _, field := range ix.schema.Searchable() {
		if schema.Reserved(field.Name) {
			continue
		}
		value, exists := doc[field.Name]
		if !exists {
			continue
		}
		ix.append(field.Name, schema.Stringify(value), id)
	}
	ix.dirty = true
}

// RecordUpdated moves a document's id from the old value list to the new
// value list for every searchable field present in the update. Fields whose
// value did not change are left alone.
func (ix *Index) RecordUpdated(old schema.Document, updated schema.Document, id string) {
	for _, field := range ix.schema.Searchable() {
		if schema.Reserved(field.Name) {
			continue
		}
		newValue, exists := updated[field.Name]
		if !exists {
			continue
		}
		oldValue, hadOld := old[field.Name]
		oldKey := schema.Stringify(oldValue)
		newKey := schema.Stringify(newValue)
		if hadOld && oldKey == newKey {
			continue
		}
		if hadOld {
			ix.remove(field.Name, oldKey, id)
		}
		ix.append(field.Name, newKey, id)
		ix.dirty = true
	}
}

// RecordRemoved drops a deleted document's id from every searchable field
// list it appears under.
func (ix *Index) RecordRemoved(doc schema.Document, id string) {
	for _, field := range ix.schema.Searchable() {
		if schema.Reserved(field.Name) {
			continue
		}
		value, exists := doc[field.Name]
		if !exists {
			continue
		}
		ix.remove(field.Name, schema.Stringify(value), id)
	}
	ix.dirty = true
}

// Lookup returns the ordered id list for a field value, or nil when the
// field or value has no entry.
func (ix *Index) Lookup(field string, value any) []string {
	values, ok := ix.entries[field]
	if !ok {
		return nil
	}
	return values[schema.Stringify(value)]
}

// Contains reports whether an id is indexed under a field value.
func (ix *Index) Contains(field string, value any, id string) bool {
	for _, candidate := range ix.Lookup(field, value) {
		if candidate == id {
			return true
		}
	}
	return false
}

// Covers reports whether a field is maintained by this index.
func (ix *Index) Covers(field string) bool {
	f := ix.schema.Field(field)
	return f != nil && f.Searchable()
}

// Dirty reports whether the index changed since the last Flushed call. The
// index file is only rewritten when dirty, so flushes that touched no
// indexed field skip the redundant write.
func (ix *Index) Dirty() bool { return ix.dirty }

// Flushed marks the in-memory state as persisted.
func (ix *Index) Flushed() { ix.dirty = false }

// Entries exposes the serialized shape for persistence. The caller must not
// mutate the returned maps.
func (ix *Index) Entries() Entries { return ix.entries }

// Load replaces the index contents wholesale, as on initialize or abort.
func (ix *Index) Load(entries Entries) {
	if entries == nil {
		entries = make(Entries)
	}
	ix.entries = entries
	ix.dirty = false
}

// Reset clears the index, as on DeleteAll.
func (ix *Index) Reset() {
	ix.entries = make(Entries)
	ix.dirty = true
}

// Rebuild reconstructs the index from a full document set, used when the
// index file is missing and the record file is not.
func (ix *Index) Rebuild(docs map[string]schema.Document) {
	ix.entries = make(Entries)
	for id, doc := range docs {
		ix.RecordAdded(doc, id)
	}
	ix.dirty = true
	ix.logger.Info("rebuilt index from record data",
		zap.String("collection", ix.schema.Name),
		zap.Int("records", len(docs)))
}

func (ix *Index) append(field, key, id string) {
	values, ok := ix.entries[field]
	if !ok {
		values = make(map[string][]string)
		ix.entries[field] = values
	}
	for _, existing := range values[key] {
		if existing == id {
			return
		}
	}
	values[key] = append(values[key], id)
}

func (ix *Index) remove(field, key, id string) {
	values, ok := ix.entries[field]
	if !ok {
		return
	}
	ids := values[key]
	for i, existing := range ids {
		if existing == id {
			values[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(values[key]) == 0 {
		delete(values, key)
	}
}
