package authoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMapInsertionOrder(t *testing.T) {
	vm := NewValueMap()
	vm.Set(30, Text("c"))
	vm.Set(10, Text("a"))
	vm.Set(20, Text("b"))

	assert.Equal(t, []int64{30, 10, 20}, vm.IDs())
	assert.Equal(t, 3, vm.Len())
}

func TestValueMapOverwriteKeepsPosition(t *testing.T) {
	vm := NewValueMap()
	vm.Set(1, Text("first"))
	vm.Set(2, Text("second"))
	vm.Set(1, Text("updated"))

	assert.Equal(t, []int64{1, 2}, vm.IDs())
	v, ok := vm.Get(1)
	require.True(t, ok)
	assert.Equal(t, Text("updated"), v)
}

func TestValueMapDelete(t *testing.T) {
	vm := NewValueMap()
	vm.Set(1, Text("a"))
	vm.Set(2, Text("b"))
	vm.Set(3, Text("c"))

	vm.Delete(2)

	assert.Equal(t, []int64{1, 3}, vm.IDs())
	_, ok := vm.Get(2)
	assert.False(t, ok)
}

func TestValueMapGetMissing(t *testing.T) {
	vm := NewValueMap()
	v, ok := vm.Get(99)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestEntityReferenceJSON(t *testing.T) {
	ref := EntityReference{
		AssociatedTable:   "tribes",
		AssociatedTableID: 14,
		Name:              "Adi",
	}

	raw, err := json.Marshal(ref)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "tribes", decoded["associated_table"])
	assert.Equal(t, float64(14), decoded["associated_table_id"])
	assert.Equal(t, "Adi", decoded["name"])
}

func TestValueEnvelopeJSON(t *testing.T) {
	env := ValueEnvelope{Value: []Value{EntityReference{
		AssociatedTable:   "tribes",
		AssociatedTableID: 3,
		Name:              "Apatani",
	}}}

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	list, ok := decoded["value"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
}

func TestAttributeDefinitionJSON(t *testing.T) {
	raw := `{"id": 7, "name": "cat-Festivals-FestivalName", "description": "Festival name", "attribute_type_id": 1, "is_required": true}`

	var def AttributeDefinition
	require.NoError(t, json.Unmarshal([]byte(raw), &def))

	assert.Equal(t, int64(7), def.ID)
	assert.Equal(t, "cat-Festivals-FestivalName", def.Name)
	assert.Equal(t, TypePlainText, def.TypeID)
	assert.True(t, def.Required)
}
