package authoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValue(t *testing.T) {
	tests := []struct {
		name   string
		typeID TypeID
		want   Value
	}{
		{"plain text", TypePlainText, Text("")},
		{"date", TypeDateDDMM, Text("")},
		{"string array", TypeStringArray, StringList{}},
		{"entity reference", TypeEntityReference, EntityReference{AssociatedTable: "tribes"}},
		{"document", TypeDocumentRecord, DocumentRecord{CreatedBy: 1}},
		{"video", TypeVideoRecord, VideoRecord{MimeType: "video", CreatedBy: 1}},
		{"image", TypeImageRecord, ImageRecord{MediaType: "image", CreatedBy: 1}},
		{"unknown type degrades to text", TypeID(99), Text("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultValue(tt.typeID))
		})
	}
}

func TestDefaultValueAudio(t *testing.T) {
	rec, ok := DefaultValue(TypeAudioRecord).(AudioRecord)
	require.True(t, ok)
	assert.Equal(t, "audio", rec.MimeType)
	assert.Equal(t, int64(1), rec.CreatedBy)
	assert.NotNil(t, rec.Genre)
	assert.NotNil(t, rec.Performers)
	assert.NotNil(t, rec.Instruments)
	assert.Empty(t, rec.Genre)
}

func TestShapeOf(t *testing.T) {
	assert.Equal(t, ShapeScalar, ShapeOf(TypePlainText))
	assert.Equal(t, ShapeScalar, ShapeOf(TypeDateDDMM))
	assert.Equal(t, ShapeList, ShapeOf(TypeStringArray))
	assert.Equal(t, ShapeReference, ShapeOf(TypeEntityReference))
	assert.Equal(t, ShapeRecord, ShapeOf(TypeAudioRecord))
	assert.Equal(t, ShapeRecord, ShapeOf(TypeImageRecord))
	assert.Equal(t, ShapeScalar, ShapeOf(TypeID(42)))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "PlainText", TypeName(TypePlainText))
	assert.Equal(t, "DateDDMM", TypeName(TypeDateDDMM))
	assert.Equal(t, "PlainText", TypeName(TypeID(77)))
}

func TestRegisteredTypes(t *testing.T) {
	types := RegisteredTypes()
	require.Len(t, types, 8)
	assert.Equal(t, TypePlainText, types[0].ID)
	assert.Equal(t, TypeDateDDMM, types[len(types)-1].ID)
	for i := 1; i < len(types); i++ {
		assert.Greater(t, types[i].ID, types[i-1].ID, "types must be in id order")
	}
}

func TestDecodeValueScalars(t *testing.T) {
	tests := []struct {
		name   string
		typeID TypeID
		raw    any
		want   Value
	}{
		{"plain text string", TypePlainText, "hello", Text("hello")},
		{"plain text number", TypePlainText, float64(42), Text("42")},
		{"date", TypeDateDDMM, "15-04", Date("15-04")},
		{"nil yields default", TypePlainText, nil, Text("")},
		{"string array from slice", TypeStringArray, []any{"a", "b"}, StringList{"a", "b"}},
		{"string array from comma string", TypeStringArray, "folk, devotional", StringList{"folk", "devotional"}},
		{"unknown type as text", TypeID(50), "raw", Text("raw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValue(tt.typeID, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeValueEntityReference(t *testing.T) {
	got, err := DecodeValue(TypeEntityReference, map[string]any{
		"associated_table":    "tribes",
		"associated_table_id": float64(14),
		"name":                "Adi",
	})
	require.NoError(t, err)
	assert.Equal(t, EntityReference{AssociatedTable: "tribes", AssociatedTableID: 14, Name: "Adi"}, got)
}

func TestDecodeValueEntityReferenceDefaultsTable(t *testing.T) {
	got, err := DecodeValue(TypeEntityReference, map[string]any{"associated_table_id": float64(3)})
	require.NoError(t, err)
	ref := got.(EntityReference)
	assert.Equal(t, "tribes", ref.AssociatedTable)
}

func TestDecodeValueAudioRecord(t *testing.T) {
	got, err := DecodeValue(TypeAudioRecord, map[string]any{
		"title":       "Nyokum song",
		"description": "Festival song",
		"file_path":   "https://cdn/audio.mp3",
		"genre":       "folk, ritual",
		"performers":  []any{"Ensemble"},
	})
	require.NoError(t, err)

	rec := got.(AudioRecord)
	assert.Equal(t, "Nyokum song", rec.Title)
	assert.Equal(t, StringList{"folk", "ritual"}, StringList(rec.Genre))
	assert.Equal(t, []string{"Ensemble"}, rec.Performers)
	assert.Equal(t, "audio", rec.MimeType, "default mime_type preserved when absent")
	assert.Empty(t, rec.Instruments, "missing list falls back to default")
}

func TestDecodeValueAudioRecordRejectsScalar(t *testing.T) {
	_, err := DecodeValue(TypeAudioRecord, "not an object")
	assert.Error(t, err)
}

func TestDecodeValuePassthrough(t *testing.T) {
	// Already-tagged values come back unchanged.
	in := Value(StringList{"x"})
	got, err := DecodeValue(TypeStringArray, in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSplitCommaList(t *testing.T) {
	assert.Equal(t, []string{}, splitCommaList("   "))
	assert.Equal(t, []string{"a", "b c", "d"}, splitCommaList("a, b c ,d"))
}
