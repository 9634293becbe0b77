package authoring

import (
	"fmt"
	"strings"
)

// defaultCreatedBy stamps new structured records, matching the portal's
// editor defaults.
const defaultCreatedBy int64 = 1

// DefaultValue returns the canonical empty value for an attribute type.
// Total over all inputs: unrecognized types degrade to an empty Text so
// editors never start from an undefined slot.
func DefaultValue(t TypeID) Value {
	switch t {
	case TypePlainText, TypeDateDDMM:
		return Text("")
	case TypeStringArray:
		return StringList{}
	case TypeEntityReference:
		return EntityReference{AssociatedTable: "tribes"}
	case TypeAudioRecord:
		return AudioRecord{
			Genre:       []string{},
			Performers:  []string{},
			Instruments: []string{},
			MimeType:    "audio",
			CreatedBy:   defaultCreatedBy,
		}
	case TypeVideoRecord:
		return VideoRecord{MimeType: "video", CreatedBy: defaultCreatedBy}
	case TypeDocumentRecord:
		return DocumentRecord{CreatedBy: defaultCreatedBy}
	case TypeImageRecord:
		return ImageRecord{MediaType: "image", CreatedBy: defaultCreatedBy}
	default:
		return Text("")
	}
}

// ShapeOf reports the structural kind of a type's values. Unknown types are
// treated as scalar text.
func ShapeOf(t TypeID) Shape {
	switch t {
	case TypeStringArray:
		return ShapeList
	case TypeEntityReference:
		return ShapeReference
	case TypeAudioRecord, TypeVideoRecord, TypeDocumentRecord, TypeImageRecord:
		return ShapeRecord
	default:
		return ShapeScalar
	}
}

// TypeName returns the display name of a registered type, or "PlainText" for
// unknown ids per the forward-compatibility policy.
func TypeName(t TypeID) string {
	switch t {
	case TypePlainText:
		return "PlainText"
	case TypeStringArray:
		return "StringArray"
	case TypeEntityReference:
		return "EntityReference"
	case TypeAudioRecord:
		return "AudioRecord"
	case TypeVideoRecord:
		return "VideoRecord"
	case TypeDocumentRecord:
		return "DocumentRecord"
	case TypeImageRecord:
		return "ImageRecord"
	case TypeDateDDMM:
		return "DateDDMM"
	default:
		return "PlainText"
	}
}

// RegisteredTypes lists the attribute types the engine knows, in id order.
func RegisteredTypes() []AttributeTypeInfo {
	ids := []TypeID{
		TypePlainText, TypeStringArray, TypeEntityReference,
		TypeAudioRecord, TypeVideoRecord, TypeDocumentRecord,
		TypeImageRecord, TypeDateDDMM,
	}
	out := make([]AttributeTypeInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, AttributeTypeInfo{ID: id, Name: TypeName(id), Shape: ShapeOf(id)})
	}
	return out
}

// DecodeValue converts a loosely-typed JSON value (as decoded into
// map[string]any / []any / string) into the tagged variant for the given
// type. Missing record fields fall back to the type's defaults. List fields
// of audio records additionally accept comma-separated strings, mirroring the
// editor's input handling.
func DecodeValue(t TypeID, raw any) (Value, error) {
	if raw == nil {
		return DefaultValue(t), nil
	}
	if v, ok := raw.(Value); ok {
		return v, nil
	}

	switch t {
	case TypePlainText:
		s, err := decodeString(raw)
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	case TypeDateDDMM:
		s, err := decodeString(raw)
		if err != nil {
			return nil, err
		}
		return Date(s), nil
	case TypeStringArray:
		list, err := decodeStringSlice(raw)
		if err != nil {
			return nil, err
		}
		return StringList(list), nil
	case TypeEntityReference:
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, err
		}
		ref := EntityReference{
			AssociatedTable: stringField(obj, "associated_table"),
			Name:            stringField(obj, "name"),
		}
		if ref.AssociatedTable == "" {
			ref.AssociatedTable = "tribes"
		}
		if idRaw, ok := obj["associated_table_id"]; ok {
			id, err := decodeInt64(idRaw)
			if err != nil {
				return nil, fmt.Errorf("associated_table_id: %w", err)
			}
			ref.AssociatedTableID = id
		}
		return ref, nil
	case TypeAudioRecord:
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, err
		}
		rec := DefaultValue(TypeAudioRecord).(AudioRecord)
		rec.Title = stringField(obj, "title")
		rec.Description = stringField(obj, "description")
		rec.FilePath = stringField(obj, "file_path")
		rec.ThumbnailPath = stringField(obj, "thumbnail_path")
		rec.Lyrics = stringField(obj, "lyrics")
		rec.Composer = stringField(obj, "composer")
		rec.Genre = listField(obj, "genre", rec.Genre)
		rec.Performers = listField(obj, "performers", rec.Performers)
		rec.Instruments = listField(obj, "instruments", rec.Instruments)
		if mt := stringField(obj, "mime_type"); mt != "" {
			rec.MimeType = mt
		}
		rec.UpdatedAt = stringField(obj, "updated_at")
		return rec, nil
	case TypeVideoRecord:
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, err
		}
		rec := DefaultValue(TypeVideoRecord).(VideoRecord)
		rec.Title = stringField(obj, "title")
		rec.Description = stringField(obj, "description")
		rec.FilePath = stringField(obj, "file_path")
		rec.ThumbnailPath = stringField(obj, "thumbnail_path")
		if mt := stringField(obj, "mime_type"); mt != "" {
			rec.MimeType = mt
		}
		rec.UpdatedAt = stringField(obj, "updated_at")
		return rec, nil
	case TypeDocumentRecord:
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, err
		}
		rec := DefaultValue(TypeDocumentRecord).(DocumentRecord)
		rec.Title = stringField(obj, "title")
		rec.Description = stringField(obj, "description")
		rec.FilePath = stringField(obj, "file_path")
		rec.ThumbnailPath = stringField(obj, "thumbnail_path")
		rec.MimeType = stringField(obj, "mime_type")
		rec.UpdatedAt = stringField(obj, "updated_at")
		return rec, nil
	case TypeImageRecord:
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, err
		}
		rec := DefaultValue(TypeImageRecord).(ImageRecord)
		rec.Title = stringField(obj, "title")
		rec.Description = stringField(obj, "description")
		rec.FilePath = stringField(obj, "file_path")
		rec.ThumbnailPath = stringField(obj, "thumbnail_path")
		rec.MimeType = stringField(obj, "mime_type")
		if mdt := stringField(obj, "media_type"); mdt != "" {
			rec.MediaType = mdt
		}
		rec.UpdatedAt = stringField(obj, "updated_at")
		return rec, nil
	default:
		// Unknown types edit as plain text.
		s, err := decodeString(raw)
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	}
}

func decodeString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case float64, int, int64:
		return fmt.Sprintf("%v", v), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", value)
	}
}

func decodeStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := decodeString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return splitCommaList(v), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to string list", value)
	}
}

func decodeInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		var n int64
		if _, err := fmt.Sscan(v, &n); err != nil {
			return 0, fmt.Errorf("cannot convert %q to int64", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", value)
	}
}

func decodeObject(value any) (map[string]any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", value)
	}
	return obj, nil
}

func stringField(obj map[string]any, key string) string {
	if raw, ok := obj[key]; ok {
		if s, err := decodeString(raw); err == nil {
			return s
		}
	}
	return ""
}

func listField(obj map[string]any, key string, fallback []string) []string {
	if raw, ok := obj[key]; ok {
		if list, err := decodeStringSlice(raw); err == nil {
			return list
		}
	}
	return fallback
}

// splitCommaList splits a comma-separated editor input, trimming whitespace
// around each entry.
func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
