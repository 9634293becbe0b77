package authoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleInsertionOrder(t *testing.T) {
	defs := festivalDefs()
	vm := NewValueMap()
	// Author fills the form out of declaration order.
	vm.Set(3, EntityReference{AssociatedTable: "tribes", AssociatedTableID: 14, Name: "Nyishi"})
	vm.Set(1, Text("Nyokum"))
	vm.Set(2, Text("15-04"))

	payload := Assemble(5, "Nyokum", "Festival", 7, defs, vm)

	require.Len(t, payload.Attributes, 3)
	assert.Equal(t, int64(3), payload.Attributes[0].AttributeID)
	assert.Equal(t, int64(1), payload.Attributes[1].AttributeID)
	assert.Equal(t, int64(2), payload.Attributes[2].AttributeID)
}

func TestAssembleItemFields(t *testing.T) {
	payload := Assemble(12, "Solung", "Adi harvest festival", 9, nil, NewValueMap())

	assert.Equal(t, "12", payload.CategoryID, "category id travels as a string")
	assert.Equal(t, "Solung", payload.Name)
	assert.Equal(t, "Adi harvest festival", payload.Description)
	assert.Equal(t, int64(9), payload.UserID)
	assert.Empty(t, payload.Attributes)
}

func TestAssembleSkipsUnmatchedValues(t *testing.T) {
	defs := []AttributeDefinition{{ID: 1, Name: "A", TypeID: TypePlainText}}
	vm := NewValueMap()
	vm.Set(1, Text("kept"))
	vm.Set(99, Text("orphan"))

	payload := Assemble(1, "Item", "", 1, defs, vm)

	require.Len(t, payload.Attributes, 1)
	assert.Equal(t, int64(1), payload.Attributes[0].AttributeID)
}

func TestAssembleNormalizesPerType(t *testing.T) {
	defs := []AttributeDefinition{
		{ID: 1, Name: "Tribe", TypeID: TypeEntityReference},
		{ID: 2, Name: "Anthem", TypeID: TypeAudioRecord},
		{ID: 3, Name: "Name", TypeID: TypePlainText},
	}
	vm := NewValueMap()
	vm.Set(1, EntityReference{AssociatedTable: "tribes", AssociatedTableID: 2, Name: "Adi"})
	vm.Set(2, DefaultValue(TypeAudioRecord))
	vm.Set(3, Text("Solung"))

	payload := Assemble(1, "Solung", "", 1, defs, vm)
	require.Len(t, payload.Attributes, 3)

	_, isEnvelope := payload.Attributes[0].Value.(ValueEnvelope)
	assert.True(t, isEnvelope)

	_, isArray := payload.Attributes[1].Value.([]Value)
	assert.True(t, isArray)

	assert.Equal(t, Text("Solung"), payload.Attributes[2].Value)
}

func TestAssembleNilValueMap(t *testing.T) {
	payload := Assemble(1, "Item", "", 1, festivalDefs(), nil)
	assert.Empty(t, payload.Attributes)
}

func TestBuildPayload(t *testing.T) {
	defs := festivalDefs()

	t.Run("invalid form returns validation errors", func(t *testing.T) {
		_, err := BuildPayload(1, "", "", 1, defs, NewValueMap())
		require.Error(t, err)
		var ve *ValidationErrors
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.HasErrors())
	})

	t.Run("valid form produces payload", func(t *testing.T) {
		vm := NewValueMap()
		vm.Set(1, Text("Nyokum"))
		vm.Set(2, Text("15-04"))
		vm.Set(3, EntityReference{AssociatedTable: "tribes", AssociatedTableID: 14, Name: "Nyishi"})

		payload, err := BuildPayload(1, "Nyokum", "Festival", 1, defs, vm)
		require.NoError(t, err)
		assert.Len(t, payload.Attributes, 3)
	})
}
