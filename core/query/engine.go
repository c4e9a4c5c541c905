// Package query implements the multi-predicate equality query engine. A
// query is a conjunction of field=value predicates, resolved against the
// secondary index where a predicate's field is covered and against the data
// cache otherwise.
package query

import (
	"go.uber.org/zap"

	"github.com/asaidimu/go-hifadhi/core/index"
	"github.com/asaidimu/go-hifadhi/core/schema"
)

// Predicate is a single case-sensitive, exact-match equality condition.
// Predicates in a query are conjunctive; order matters only for resolution
// strategy, not for semantics.
type Predicate struct {
	Field string
	Value any
}

// Where constructs a Predicate.
func Where(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

// Source is the read view of the data cache the engine scans. IDs returns
// document ids in insertion order, which also fixes result order.
type Source interface {
	Get(id string) (schema.Document, bool)
	IDs() []string
}

// Engine resolves predicate conjunctions into document sets.
type Engine struct {
	source Source
	index  *index.Index
	logger *zap.Logger
}

// NewEngine creates an Engine over a data cache view and its index. A nil
// logger falls back to a no-op logger.
func NewEngine(source Source, ix *index.Index, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{source: source, index: ix, logger: logger}
}

// Find returns the documents matching every predicate. The first predicate
// seeds a candidate set, from the index when its field is covered and from a
// full cache scan otherwise. Each later predicate narrows the candidates
// only, never rescanning the full cache. A side table counts how many
// predicates each candidate has proven; only candidates that proved all of
// them survive, which keeps the AND semantics correct even when the seeding
// scan was unfiltered. Result order follows cache insertion order.
func (e *Engine) Find(preds ...Predicate) []schema.Document {
	if len(preds) == 0 {
		return nil
	}

	matches := make(map[string]int)
	first := preds[0]
	if e.index.Covers(first.Field) {
		e.logger.Debug("seeding candidates from index", zap.String("field", first.Field))
		for _, id := range e.index.Lookup(first.Field, first.Value) {
			matches[id] = 1
		}
	} else {
		e.logger.Debug("seeding candidates from full scan", zap.String("field", first.Field))
		for _, id := range e.source.IDs() {
			doc, ok := e.source.Get(id)
			if ok && fieldEquals(doc, first.Field, first.Value) {
				matches[id] = 1
			}
		}
	}

	for _, pred := range preds[1:] {
		if len(matches) == 0 {
			return nil
		}
		indexed := e.index.Covers(pred.Field)
		for id, count := range matches {
			if count == 0 {
				continue
			}
			var survives bool
			if indexed {
				survives = e.index.Contains(pred.Field, pred.Value, id)
			} else {
				doc, ok := e.source.Get(id)
				survives = ok && fieldEquals(doc, pred.Field, pred.Value)
			}
			if survives {
				matches[id] = count + 1
			} else {
				delete(matches, id)
			}
		}
	}

	results := make([]schema.Document, 0, len(matches))
	for _, id := range e.source.IDs() {
		if matches[id] != len(preds) {
			continue
		}
		if doc, ok := e.source.Get(id); ok {
			results = append(results, doc)
		}
	}
	return results
}

// CountMatches reports how many stored documents have the given field value.
// It backs the validator's uniqueness checks.
func (e *Engine) CountMatches(field string, value any) int {
	return len(e.Find(Where(field, value)))
}

// fieldEquals compares a document field against a predicate value using the
// same stringified form the index keys use, so a number survives a JSON
// round trip without changing its match behavior.
func fieldEquals(doc schema.Document, field string, value any) bool {
	actual, exists := doc[field]
	if !exists {
		return false
	}
	return schema.Stringify(actual) == schema.Stringify(value)
}
