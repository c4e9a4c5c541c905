package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaidimu/go-hifadhi/core/schema"
)

type user struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age,omitempty"`
}

func TestStructToDocument(t *testing.T) {
	t.Run("struct value", func(t *testing.T) {
		doc, err := StructToDocument(user{Name: "Alice", Email: "a@b.c", Age: 30})
		require.NoError(t, err)
		assert.Equal(t, "Alice", doc["name"])
		assert.Equal(t, float64(30), doc["age"], "numbers arrive as float64 after the JSON round trip")
		assert.NotContains(t, doc, "id", "omitempty drops the empty id")
	})

	t.Run("pointer to struct", func(t *testing.T) {
		doc, err := StructToDocument(&user{Name: "Bob", Email: "b@b.c"})
		require.NoError(t, err)
		assert.Equal(t, "Bob", doc["name"])
	})

	t.Run("nil pointer", func(t *testing.T) {
		_, err := StructToDocument((*user)(nil))
		assert.Error(t, err)
	})

	t.Run("non-struct", func(t *testing.T) {
		_, err := StructToDocument("not a struct")
		assert.Error(t, err)
	})
}

func TestDocumentToStruct(t *testing.T) {
	t.Run("round trip with engine fields", func(t *testing.T) {
		doc := schema.Document{
			"id":    "user-1",
			"name":  "Alice",
			"email": "a@b.c",
			"age":   float64(30),
		}
		u, err := DocumentToStruct[user](doc)
		require.NoError(t, err)
		assert.Equal(t, "user-1", u.ID)
		assert.Equal(t, "Alice", u.Name)
		assert.Equal(t, 30, u.Age)
	})

	t.Run("nil document", func(t *testing.T) {
		_, err := DocumentToStruct[user](nil)
		assert.Error(t, err)
	})
}
