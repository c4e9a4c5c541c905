package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	t.Run("preserves declaration order", func(t *testing.T) {
		sc, err := ParseSchema([]byte(`{
			"name": "users",
			"fields": [
				{"name": "b", "type": "string"},
				{"name": "a", "type": "number", "indexed": true}
			]
		}`))
		require.NoError(t, err)
		require.Len(t, sc.Fields, 2)
		assert.Equal(t, "b", sc.Fields[0].Name)
		assert.Equal(t, "a", sc.Fields[1].Name)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := ParseSchema([]byte(`{"name": "x", "fields": [{"name": "f", "type": "decimal"}]}`))
		assert.Error(t, err)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := ParseSchema([]byte(`{"fields": []}`))
		assert.Error(t, err)
	})
}

func TestSchema_Searchable(t *testing.T) {
	sc := &Schema{
		Name: "x",
		Fields: []*FieldDefinition{
			{Name: "a", Type: FieldTypeString, Unique: true},
			{Name: "b", Type: FieldTypeString},
			{Name: "c", Type: FieldTypeNumber, Indexed: true},
		},
	}
	searchable := sc.Searchable()
	require.Len(t, searchable, 2)
	assert.Equal(t, "a", searchable[0].Name)
	assert.Equal(t, "c", searchable[1].Name)
}

func TestStringify(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "abc", "abc"},
		{"bool", true, "true"},
		{"int", 30, "30"},
		{"float without fraction", float64(30), "30"},
		{"float with fraction", 30.5, "30.5"},
		{"nil", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Stringify(tc.value))
		})
	}
}

func TestReserved(t *testing.T) {
	assert.True(t, Reserved("id"))
	assert.True(t, Reserved("createdAt"))
	assert.True(t, Reserved("updatedAt"))
	assert.False(t, Reserved("email"))
}
