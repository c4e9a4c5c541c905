package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaidimu/go-hifadhi/core/schema"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		Name: "users",
		Fields: []*schema.FieldDefinition{
			{Name: "email", Type: schema.FieldTypeString, Unique: true},
			{Name: "age", Type: schema.FieldTypeNumber, Indexed: true},
			{Name: "name", Type: schema.FieldTypeString},
		},
	}
}

func TestIndex_RecordAdded(t *testing.T) {
	ix := New(testSchema(), nil)

	ix.RecordAdded(schema.Document{"email": "a@b.c", "age": 30, "name": "Alice"}, "id-1")
	ix.RecordAdded(schema.Document{"email": "b@b.c", "age": 30}, "id-2")

	assert.Equal(t, []string{"id-1"}, ix.Lookup("email", "a@b.c"))
	assert.Equal(t, []string{"id-1", "id-2"}, ix.Lookup("age", 30))
	assert.Nil(t, ix.Lookup("name", "Alice"), "non-indexed fields stay out of the index")
	assert.True(t, ix.Dirty())
}

func TestIndex_LookupNormalizesNumbers(t *testing.T) {
	ix := New(testSchema(), nil)
	ix.RecordAdded(schema.Document{"age": 30}, "id-1")

	// A JSON reload turns 30 into float64(30); both must hit the same entry.
	assert.Equal(t, []string{"id-1"}, ix.Lookup("age", float64(30)))
	assert.Equal(t, []string{"id-1"}, ix.Lookup("age", 30))
}

func TestIndex_RecordUpdated(t *testing.T) {
	ix := New(testSchema(), nil)
	old := schema.Document{"email": "a@b.c", "age": 30}
	ix.RecordAdded(old, "id-1")
	ix.Flushed()

	t.Run("moves id between value lists", func(t *testing.T) {
		ix.RecordUpdated(old, schema.Document{"age": 31}, "id-1")
		assert.Empty(t, ix.Lookup("age", 30))
		assert.Equal(t, []string{"id-1"}, ix.Lookup("age", 31))
		assert.True(t, ix.Dirty())
	})

	t.Run("unchanged value is left alone", func(t *testing.T) {
		ix.Flushed()
		ix.RecordUpdated(old, schema.Document{"email": "a@b.c"}, "id-1")
		assert.Equal(t, []string{"id-1"}, ix.Lookup("email", "a@b.c"))
		assert.False(t, ix.Dirty(), "no index mutation means no dirty flag")
	})

	t.Run("field absent before the update", func(t *testing.T) {
		ix.RecordUpdated(schema.Document{}, schema.Document{"email": "new@b.c"}, "id-2")
		assert.Equal(t, []string{"id-2"}, ix.Lookup("email", "new@b.c"))
	})
}

func TestIndex_RecordRemoved(t *testing.T) {
	ix := New(testSchema(), nil)
	doc1 := schema.Document{"email": "a@b.c", "age": 30}
	doc2 := schema.Document{"email": "b@b.c", "age": 30}
	ix.RecordAdded(doc1, "id-1")
	ix.RecordAdded(doc2, "id-2")

	ix.RecordRemoved(doc1, "id-1")

	assert.Empty(t, ix.Lookup("email", "a@b.c"))
	assert.Equal(t, []string{"id-2"}, ix.Lookup("age", 30))
}

func TestIndex_MembershipIsExactlyOnce(t *testing.T) {
	ix := New(testSchema(), nil)
	doc := schema.Document{"age": 30}

	ix.RecordAdded(doc, "id-1")
	ix.RecordAdded(doc, "id-1")

	assert.Equal(t, []string{"id-1"}, ix.Lookup("age", 30))
}

func TestIndex_Contains(t *testing.T) {
	ix := New(testSchema(), nil)
	ix.RecordAdded(schema.Document{"age": 30}, "id-1")

	assert.True(t, ix.Contains("age", 30, "id-1"))
	assert.False(t, ix.Contains("age", 30, "id-2"))
	assert.False(t, ix.Contains("age", 31, "id-1"))
}

func TestIndex_Covers(t *testing.T) {
	ix := New(testSchema(), nil)

	assert.True(t, ix.Covers("email"))
	assert.True(t, ix.Covers("age"))
	assert.False(t, ix.Covers("name"))
	assert.False(t, ix.Covers("unknown"))
}

func TestIndex_Rebuild(t *testing.T) {
	ix := New(testSchema(), nil)
	docs := map[string]schema.Document{
		"id-1": {"email": "a@b.c", "age": 30},
		"id-2": {"email": "b@b.c", "age": 30},
	}

	ix.Rebuild(docs)

	assert.Equal(t, []string{"id-1"}, ix.Lookup("email", "a@b.c"))
	assert.ElementsMatch(t, []string{"id-1", "id-2"}, ix.Lookup("age", 30))
	assert.True(t, ix.Dirty())
}

func TestIndex_LoadAndReset(t *testing.T) {
	ix := New(testSchema(), nil)
	ix.Load(Entries{"email": {"a@b.c": {"id-1"}}})
	require.Equal(t, []string{"id-1"}, ix.Lookup("email", "a@b.c"))
	assert.False(t, ix.Dirty(), "a freshly loaded index matches disk")

	ix.Reset()
	assert.Empty(t, ix.Lookup("email", "a@b.c"))
	assert.True(t, ix.Dirty())
}
