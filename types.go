package authoring

// TypeID identifies an attribute type in the portal's configuration database.
type TypeID int16

const (
	TypePlainText       TypeID = 1
	TypeStringArray     TypeID = 2
	TypeEntityReference TypeID = 6
	TypeAudioRecord     TypeID = 8
	TypeVideoRecord     TypeID = 9
	TypeDocumentRecord  TypeID = 10
	TypeImageRecord     TypeID = 11
	TypeDateDDMM        TypeID = 12
)

// Shape describes the structural kind of an attribute value.
type Shape string

const (
	ShapeScalar    Shape = "scalar"
	ShapeList      Shape = "list"
	ShapeReference Shape = "reference"
	ShapeRecord    Shape = "record"
)

// Value is the closed set of editor-native attribute values. Every variant
// marshals to the exact JSON shape the portal's editors produce.
type Value interface {
	attributeValue()
}

// Text is a scalar string value (plain text and unknown types).
type Text string

// StringList is an ordered sequence of strings.
type StringList []string

// Date is a day-month string formatted "DD-MM"; the year is implicit.
type Date string

// EntityReference identifies exactly one related entity, e.g. one tribe.
type EntityReference struct {
	AssociatedTable   string `json:"associated_table"`
	AssociatedTableID int64  `json:"associated_table_id"`
	Name              string `json:"name"`
}

// AudioRecord is the structured value for folk-music attributes.
type AudioRecord struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	FilePath      string   `json:"file_path"`
	ThumbnailPath string   `json:"thumbnail_path"`
	Lyrics        string   `json:"lyrics"`
	Genre         []string `json:"genre"`
	Composer      string   `json:"composer"`
	Performers    []string `json:"performers"`
	Instruments   []string `json:"instruments"`
	MimeType      string   `json:"mime_type"`
	CreatedBy     int64    `json:"created_by"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
}

// VideoRecord is the structured value for video attributes. FilePath holds
// either an uploaded media URI or a YouTube embed URL.
type VideoRecord struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	FilePath      string `json:"file_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	MimeType      string `json:"mime_type"`
	CreatedBy     int64  `json:"created_by"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// DocumentRecord is the structured value for document attributes.
type DocumentRecord struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	FilePath      string `json:"file_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	MimeType      string `json:"mime_type"`
	CreatedBy     int64  `json:"created_by"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// ImageRecord is the structured value for image attributes.
type ImageRecord struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	FilePath      string `json:"file_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	MimeType      string `json:"mime_type"`
	MediaType     string `json:"media_type"`
	CreatedBy     int64  `json:"created_by"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

func (Text) attributeValue()            {}
func (StringList) attributeValue()      {}
func (Date) attributeValue()            {}
func (EntityReference) attributeValue() {}
func (AudioRecord) attributeValue()     {}
func (VideoRecord) attributeValue()     {}
func (DocumentRecord) attributeValue()  {}
func (ImageRecord) attributeValue()     {}

// ValueEnvelope is the historical `{"value": [...]}` wrapper the portal API
// expects around entity references.
type ValueEnvelope struct {
	Value []Value `json:"value"`
}

// AttributeDefinition describes one field of a category. Definitions are
// configuration: immutable for the duration of an authoring session.
type AttributeDefinition struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TypeID      TypeID `json:"attribute_type_id"`
	Required    bool   `json:"is_required"`
}

// Category is a named content type whose items share one definition set.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EntityOption is one selectable entry for an entity-reference editor.
type EntityOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AttributeTypeInfo describes one registered attribute type, as served by the
// portal's attribute-type listing.
type AttributeTypeInfo struct {
	ID    TypeID `json:"id"`
	Name  string `json:"name"`
	Shape Shape  `json:"shape"`
}

// SubmissionAttribute is the normalized, wire-ready form of one ValueMap
// entry. Derived at submission time; never mutated directly.
type SubmissionAttribute struct {
	AttributeID   int64  `json:"attribute_id"`
	AttributeName string `json:"attribute_name"`
	TypeID        TypeID `json:"attribute_type_id"`
	Value         any    `json:"attribute_value"`
}

// SubmissionPayload is the body handed to the content-item creation endpoint.
// The category id travels as a string, matching the consuming API.
type SubmissionPayload struct {
	CategoryID  string                `json:"category_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	UserID      int64                 `json:"user_id"`
	Attributes  []SubmissionAttribute `json:"attributes"`
}

// ValueMap holds the in-progress values for one content item, keyed by
// attribute id. Iteration follows insertion order; updating an existing key
// keeps its original position. Not safe for concurrent use on its own; the
// Session serializes access.
type ValueMap struct {
	order  []int64
	values map[int64]Value
}

// NewValueMap returns an empty value map.
func NewValueMap() *ValueMap {
	return &ValueMap{values: make(map[int64]Value)}
}

// Set stores the value for an attribute id, appending to the insertion order
// on first write.
func (m *ValueMap) Set(attrID int64, v Value) {
	if _, ok := m.values[attrID]; !ok {
		m.order = append(m.order, attrID)
	}
	m.values[attrID] = v
}

// Get returns the value for an attribute id, if present.
func (m *ValueMap) Get(attrID int64) (Value, bool) {
	v, ok := m.values[attrID]
	return v, ok
}

// Delete removes an attribute's value and its position.
func (m *ValueMap) Delete(attrID int64) {
	if _, ok := m.values[attrID]; !ok {
		return
	}
	delete(m.values, attrID)
	for i, id := range m.order {
		if id == attrID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of populated entries.
func (m *ValueMap) Len() int {
	return len(m.values)
}

// IDs returns the attribute ids in insertion order.
func (m *ValueMap) IDs() []int64 {
	out := make([]int64, len(m.order))
	copy(out, m.order)
	return out
}
