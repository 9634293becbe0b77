package authoring

// Normalize reshapes an editor-native value into the exact structure the
// content-creation endpoint expects. The three conventions are a fixed
// contract of the consuming API and must not be unified:
//
//   - entity references travel as a one-element array inside a value
//     envelope: {"value": [v]}
//   - audio/video/document/image records travel as a bare one-element
//     array: [v]
//   - everything else (plain text, string arrays, dates, unknown types)
//     passes through unchanged.
func Normalize(t TypeID, v Value) any {
	if v == nil {
		return nil
	}
	switch t {
	case TypeEntityReference:
		return ValueEnvelope{Value: []Value{v}}
	case TypeAudioRecord, TypeVideoRecord, TypeDocumentRecord, TypeImageRecord:
		return []Value{v}
	default:
		return v
	}
}
