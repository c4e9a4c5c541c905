package persistence

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/asaidimu/go-hifadhi/core/index"
	"github.com/asaidimu/go-hifadhi/core/schema"
	"github.com/asaidimu/go-hifadhi/core/storage"
)

// Persisted layout per collection: <basePath>/<name>.json holds the id to
// record object map, <basePath>/<name>_index.json holds the field to value
// to id-list map.

func (c *Collection) dataPath() string {
	return filepath.Join(c.basePath, c.schema.Name+".json")
}

func (c *Collection) indexPath() string {
	return filepath.Join(c.basePath, c.schema.Name+"_index.json")
}

// loadCaches replaces both in-memory caches from disk. A missing index file
// is not an error: the index is rebuildable from the record data, so it is
// reconstructed and left dirty for the next flush.
func (c *Collection) loadCaches() error {
	content, err := c.gateway.Read(c.dataPath())
	if err != nil {
		return err
	}

	var docs map[string]schema.Document
	if err := json.Unmarshal(content, &docs); err != nil {
		return &storage.LoadError{Path: c.dataPath(), Err: err}
	}
	c.cache.Load(docs)

	if !c.gateway.Exists(c.indexPath()) {
		c.index.Rebuild(c.cache.Snapshot())
		return nil
	}

	content, err = c.gateway.Read(c.indexPath())
	if err != nil {
		return err
	}

	var entries index.Entries
	if err := json.Unmarshal(content, &entries); err != nil {
		return &storage.LoadError{Path: c.indexPath(), Err: err}
	}
	c.index.Load(entries)

	c.logger.Debug("loaded caches",
		zap.String("collection", c.schema.Name),
		zap.Int("records", c.cache.Len()))
	return nil
}

// flush writes the data cache, and the index cache when dirty, to the
// gateway. While a transaction is open the flush is suppressed; commit
// performs it instead.
func (c *Collection) flush() error {
	if c.tx.IsOpen() {
		c.logger.Debug("flush suppressed by open transaction",
			zap.String("collection", c.schema.Name))
		return nil
	}

	content, err := json.Marshal(c.cache.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to serialize collection '%s': %w", c.schema.Name, err)
	}
	if err := c.gateway.Write(c.dataPath(), content); err != nil {
		return err
	}

	if c.index.Dirty() {
		content, err := json.Marshal(c.index.Entries())
		if err != nil {
			return fmt.Errorf("failed to serialize index for '%s': %w", c.schema.Name, err)
		}
		if err := c.gateway.Write(c.indexPath(), content); err != nil {
			return err
		}
		c.index.Flushed()
	}
	return nil
}
