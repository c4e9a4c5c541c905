// Package persistence implements the collection façade: the public CRUD
// surface composed from the schema validator, the data and index caches, the
// query engine and the persistence gateway. Every mutation validates first,
// then updates the index cache and the data cache in lockstep, then flushes
// both files through the gateway unless a transaction is open.
package persistence

import (
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asaidimu/go-hifadhi/core/index"
	"github.com/asaidimu/go-hifadhi/core/query"
	"github.com/asaidimu/go-hifadhi/core/schema"
	"github.com/asaidimu/go-hifadhi/core/storage"
)

// Collection is a single schema-validated document collection backed by two
// JSON files under a base path. A Collection is single-writer: no locking
// protects two instances pointed at the same files.
type Collection struct {
	schema    *schema.Schema
	basePath  string
	gateway   storage.Gateway
	cache     *dataCache
	index     *index.Index
	engine    *query.Engine
	validator *schema.Validator
	tx        transactionController
	logger    *zap.Logger

	bus           *events.TypedEventBus[Event]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// NewCollection wires a collection for a schema over a gateway. A nil logger
// falls back to a no-op logger. Call Initialize before any other operation.
func NewCollection(sc *schema.Schema, gateway storage.Gateway, basePath string, logger *zap.Logger) (*Collection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	cache := newDataCache()
	ix := index.New(sc, logger)
	engine := query.NewEngine(cache, ix, logger)

	return &Collection{
		schema:        sc,
		basePath:      basePath,
		gateway:       gateway,
		cache:         cache,
		index:         ix,
		engine:        engine,
		validator:     schema.NewValidator(sc, engine),
		logger:        logger,
		bus:           bus,
		subscriptions: make(map[string]*SubscriptionInfo),
	}, nil
}

// Schema returns the collection's immutable schema.
func (c *Collection) Schema() *schema.Schema { return c.schema }

// Initialize ensures the base directory and both collection files exist,
// then loads the caches wholesale. It is idempotent.
func (c *Collection) Initialize() error {
	if err := c.gateway.Mkdir(c.basePath); err != nil {
		return err
	}
	if !c.gateway.Exists(c.dataPath()) {
		if err := c.gateway.Write(c.dataPath(), []byte("{}")); err != nil {
			return err
		}
	}
	if err := c.loadCaches(); err != nil {
		return err
	}
	if c.index.Dirty() {
		// The index was rebuilt from record data; persist it.
		if err := c.flush(); err != nil {
			return err
		}
	}
	c.logger.Info("initialized collection",
		zap.String("collection", c.schema.Name),
		zap.String("basePath", c.basePath),
		zap.Int("records", c.cache.Len()))
	return nil
}

// OpenTransaction defers persistence until commit. Opening while a
// transaction is already open is a no-op.
func (c *Collection) OpenTransaction() {
	c.tx.Open()
	c.emitEvent(createEvent(EventTransactionOpen, "transaction", c.schema.Name, nil, nil, nil, time.Time{}))
}

// CommitTransaction closes the gate and flushes both caches to disk.
func (c *Collection) CommitTransaction() error {
	c.tx.Close()
	if err := c.flush(); err != nil {
		return err
	}
	c.emitEvent(createEvent(EventTransactionCommit, "transaction", c.schema.Name, nil, nil, nil, time.Time{}))
	c.logger.Info("committed transaction", zap.String("collection", c.schema.Name))
	return nil
}

// AbortTransaction closes the gate and reloads both caches from disk,
// discarding every mutation made while the transaction was open.
func (c *Collection) AbortTransaction() error {
	c.tx.Close()
	if err := c.loadCaches(); err != nil {
		return err
	}
	c.emitEvent(createEvent(EventTransactionAbort, "transaction", c.schema.Name, nil, nil, nil, time.Time{}))
	c.logger.Info("aborted transaction", zap.String("collection", c.schema.Name))
	return nil
}

// AllRecords returns every cached document in cache iteration order.
func (c *Collection) AllRecords() []schema.Document {
	return c.cache.All()
}

// FindByID returns the document for an id. Absence is a normal outcome,
// reported through the boolean, not an error.
func (c *Collection) FindByID(id string) (schema.Document, bool) {
	return c.cache.Get(id)
}

// Find resolves a conjunction of equality predicates. See the query package
// for resolution strategy.
func (c *Collection) Find(preds ...query.Predicate) []schema.Document {
	return c.engine.Find(preds...)
}

// CountAll returns the number of cached documents.
func (c *Collection) CountAll() int {
	return c.cache.Len()
}

// InsertOne validates and stores a new document under a generated id,
// returning the stored document with its engine-owned fields stamped.
func (c *Collection) InsertOne(doc schema.Document) (schema.Document, error) {
	return c.insertWithEvents(doc, "")
}

// InsertOneWithID is InsertOne with a caller-supplied id. It fails with
// ErrDuplicateID when the id is already taken.
func (c *Collection) InsertOneWithID(doc schema.Document, id string) (schema.Document, error) {
	return c.insertWithEvents(doc, id)
}

func (c *Collection) insertWithEvents(doc schema.Document, id string) (schema.Document, error) {
	result, err := c.withEvents("insert", EventInsertStart, EventInsertSuccess, EventInsertFailed, doc, func() (any, error) {
		stored, err := c.insertOne(doc, id)
		if err != nil {
			return nil, err
		}
		if err := c.flush(); err != nil {
			return nil, err
		}
		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(schema.Document), nil
}

// insertOne applies the insert steps without flushing, so InsertMany can
// batch a single flush at the end.
func (c *Collection) insertOne(doc schema.Document, id string) (schema.Document, error) {
	if id != "" {
		if _, exists := c.cache.Get(id); exists {
			return nil, fmt.Errorf("cannot insert '%s': %w", id, ErrDuplicateID)
		}
	} else {
		id = uuid.New().String()
	}

	if err := c.validator.Validate(doc, false); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	stored := cloneDocument(doc)
	stored[schema.FieldID] = id
	stored[schema.FieldCreatedAt] = now
	stored[schema.FieldUpdatedAt] = now

	c.index.RecordAdded(stored, id)
	c.cache.Put(id, stored)
	return stored, nil
}

// InsertMany inserts documents in input order as a batch with a single flush
// at the end. Validation is fail-fast: the first failure aborts the call and
// nothing is flushed, but items already applied to the in-memory caches are
// not rolled back.
func (c *Collection) InsertMany(docs []schema.Document) ([]schema.Document, error) {
	result, err := c.withEvents("insert", EventInsertStart, EventInsertSuccess, EventInsertFailed, docs, func() (any, error) {
		stored := make([]schema.Document, 0, len(docs))
		for _, doc := range docs {
			s, err := c.insertOne(doc, "")
			if err != nil {
				return nil, err
			}
			stored = append(stored, s)
		}
		if err := c.flush(); err != nil {
			return nil, err
		}
		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]schema.Document), nil
}

// UpdateByID merges a partial document over the existing one, refreshes
// updatedAt, validates in update mode and stores the result. Caller-supplied
// id and createdAt fields in the partial are stripped: both are immutable.
func (c *Collection) UpdateByID(id string, partial schema.Document) (schema.Document, error) {
	result, err := c.withEvents("update", EventUpdateStart, EventUpdateSuccess, EventUpdateFailed, partial, func() (any, error) {
		existing, ok := c.cache.Get(id)
		if !ok {
			return nil, fmt.Errorf("cannot update '%s': %w", id, ErrRecordNotFound)
		}

		changes := cloneDocument(partial)
		delete(changes, schema.FieldID)
		delete(changes, schema.FieldCreatedAt)

		merged := cloneDocument(existing)
		for field, value := range changes {
			merged[field] = value
		}
		merged[schema.FieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)

		if err := c.validator.Validate(merged, true); err != nil {
			return nil, err
		}

		c.index.RecordUpdated(existing, changes, id)
		c.cache.Put(id, merged)
		if err := c.flush(); err != nil {
			return nil, err
		}
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(schema.Document), nil
}

// InsertOrUpdate dispatches to UpdateByID when the id exists in the cache,
// and to an insert under that id otherwise.
func (c *Collection) InsertOrUpdate(partial schema.Document, id string) (schema.Document, error) {
	if _, exists := c.cache.Get(id); exists {
		return c.UpdateByID(id, partial)
	}
	return c.InsertOneWithID(partial, id)
}

// DeleteByID removes a document from both caches and returns it.
func (c *Collection) DeleteByID(id string) (schema.Document, error) {
	result, err := c.withEvents("delete", EventDeleteStart, EventDeleteSuccess, EventDeleteFailed, id, func() (any, error) {
		doc, ok := c.cache.Get(id)
		if !ok {
			return nil, fmt.Errorf("cannot delete '%s': %w", id, ErrRecordNotFound)
		}
		c.index.RecordRemoved(doc, id)
		c.cache.Delete(id)
		if err := c.flush(); err != nil {
			return nil, err
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(schema.Document), nil
}

// DeleteAll clears the data cache and the index cache wholesale and flushes.
// It is idempotent.
func (c *Collection) DeleteAll() error {
	_, err := c.withEvents("delete", EventDeleteStart, EventDeleteSuccess, EventDeleteFailed, nil, func() (any, error) {
		c.cache.Reset()
		c.index.Reset()
		if err := c.flush(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// Subscribe registers a callback for an event type and returns a callback id
// for Unsubscribe.
func (c *Collection) Subscribe(eventType EventType, callback EventCallback) string {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	unsubscribe := c.bus.Subscribe(string(eventType), callback)
	callbackID := uuid.New().String()
	c.subscriptions[callbackID] = &SubscriptionInfo{
		Event:       eventType,
		Unsubscribe: unsubscribe,
	}
	return callbackID
}

// Unsubscribe removes a previously registered subscription.
func (c *Collection) Unsubscribe(callbackID string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	info := c.subscriptions[callbackID]
	if info != nil {
		info.Unsubscribe()
		delete(c.subscriptions, callbackID)
	}
}

func (c *Collection) emitEvent(event Event) {
	if c.bus != nil {
		c.bus.Emit(string(event.Type), event)
	}
}

// withEvents wraps an operation with start, success and failure events.
func (c *Collection) withEvents(
	operation string,
	startType, successType, failedType EventType,
	input any,
	fn func() (any, error),
) (any, error) {
	startTime := time.Now()
	c.emitEvent(createEvent(startType, operation, c.schema.Name, input, nil, nil, startTime))

	result, err := fn()
	if err != nil {
		errStr := err.Error()
		c.emitEvent(createEvent(failedType, operation, c.schema.Name, input, nil, &errStr, startTime))
		return nil, err
	}

	c.emitEvent(createEvent(successType, operation, c.schema.Name, input, result, nil, startTime))
	return result, nil
}
