package authoring

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// EditorKind identifies the widget family an attribute edits with.
type EditorKind string

const (
	EditorText         EditorKind = "text"
	EditorStringList   EditorKind = "string_list"
	EditorEntitySelect EditorKind = "entity_select"
	EditorAudioForm    EditorKind = "audio_form"
	EditorVideoForm    EditorKind = "video_form"
	EditorDocumentForm EditorKind = "document_form"
	EditorImageForm    EditorKind = "image_form"
	EditorThumbnail    EditorKind = "thumbnail_upload"
	EditorDateDDMM     EditorKind = "date_ddmm"
)

// InputKind is the concrete input element of one control.
type InputKind string

const (
	InputText   InputKind = "text"
	InputFile   InputKind = "file"
	InputSelect InputKind = "select"
	InputDate   InputKind = "date"
	InputList   InputKind = "list"
)

// Control describes one input of a rendered editor. Apply decodes the raw
// input, folds it into the attribute's value, and fires the editor's change
// callback; it is the only way an editor mutates its value slot.
type Control struct {
	Field    string
	Label    string
	Input    InputKind
	Required bool
	Value    any
	Apply    func(raw any) error
}

// Form is the rendered shape of an editor bound to a value slot.
type Form struct {
	Kind     EditorKind
	Controls []Control
}

// EditorHandle binds an attribute definition to its widget. Render yields the
// control tree for the current value; every control change flows through
// onChange with the full replacement value.
type EditorHandle interface {
	Kind() EditorKind
	Render(current Value, onChange func(Value)) Form
}

// festivalDateAttribute is a legacy field whose backend type is generic text
// but whose UI must be a day-month picker.
const festivalDateAttribute = "cat-Festivals-DateOfCelebration"

// Dispatcher selects editors for attribute definitions using a priority-
// ordered rule table: name-pattern rules are checked before type rules, so
// legacy ad-hoc fields get their specialized widgets regardless of declared
// type.
type Dispatcher struct {
	entities EntityService
	rules    []dispatchRule
}

type dispatchRule struct {
	match func(AttributeDefinition) bool
	build func(*Dispatcher, AttributeDefinition) EditorHandle
}

// NewDispatcher creates a dispatcher. The entity service backs the options of
// entity-reference editors.
func NewDispatcher(entities EntityService) *Dispatcher {
	d := &Dispatcher{entities: entities}
	d.rules = []dispatchRule{
		{
			match: func(def AttributeDefinition) bool {
				name := strings.ToLower(def.Name)
				return strings.Contains(name, "thumbnail") || strings.Contains(name, "image")
			},
			build: func(_ *Dispatcher, def AttributeDefinition) EditorHandle {
				return &thumbnailEditor{def: def}
			},
		},
		{
			match: func(def AttributeDefinition) bool { return def.Name == festivalDateAttribute },
			build: func(_ *Dispatcher, def AttributeDefinition) EditorHandle {
				return &dateEditor{def: def}
			},
		},
		{
			match: func(AttributeDefinition) bool { return true },
			build: (*Dispatcher).byType,
		},
	}
	return d
}

// SelectEditor returns the editor for a definition; the first matching rule
// wins.
func (d *Dispatcher) SelectEditor(def AttributeDefinition) EditorHandle {
	for _, rule := range d.rules {
		if rule.match(def) {
			return rule.build(d, def)
		}
	}
	// Unreachable: the type rule matches everything.
	return &textEditor{def: def}
}

func (d *Dispatcher) byType(def AttributeDefinition) EditorHandle {
	switch def.TypeID {
	case TypeStringArray:
		return &stringListEditor{def: def}
	case TypeEntityReference:
		return &entitySelectEditor{def: def, entities: d.entities}
	case TypeAudioRecord:
		return &audioEditor{def: def}
	case TypeVideoRecord:
		return &videoEditor{def: def}
	case TypeDocumentRecord:
		return &documentEditor{def: def}
	case TypeImageRecord:
		return &imageEditor{def: def}
	case TypeDateDDMM:
		return &dateEditor{def: def}
	default:
		// Plain text, and unknown types by policy.
		return &textEditor{def: def}
	}
}

// --- scalar editors ---

type textEditor struct {
	def AttributeDefinition
}

func (e *textEditor) Kind() EditorKind { return EditorText }

func (e *textEditor) Render(current Value, onChange func(Value)) Form {
	if current == nil {
		current = DefaultValue(TypePlainText)
	}
	return Form{
		Kind: EditorText,
		Controls: []Control{{
			Label:    e.def.Description,
			Input:    InputText,
			Required: e.def.Required,
			Value:    current,
			Apply: func(raw any) error {
				s, err := decodeString(raw)
				if err != nil {
					return err
				}
				onChange(Text(s))
				return nil
			},
		}},
	}
}

type dateEditor struct {
	def AttributeDefinition
}

func (e *dateEditor) Kind() EditorKind { return EditorDateDDMM }

// Render accepts full dates from the picker and keeps only the day-month
// part; the year is implicit.
func (e *dateEditor) Render(current Value, onChange func(Value)) Form {
	if current == nil {
		current = Date("")
	}
	return Form{
		Kind: EditorDateDDMM,
		Controls: []Control{{
			Label:    e.def.Description,
			Input:    InputDate,
			Required: e.def.Required,
			Value:    current,
			Apply: func(raw any) error {
				s, err := decodeString(raw)
				if err != nil {
					return err
				}
				ddmm, err := toDDMM(s)
				if err != nil {
					return err
				}
				onChange(Date(ddmm))
				return nil
			},
		}},
	}
}

// toDDMM converts a "YYYY-MM-DD" picker value to the wire's "DD-MM" form.
// Already-formatted "DD-MM" values pass through.
func toDDMM(s string) (string, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("02-01"), nil
	}
	if _, err := time.Parse("02-01", s); err == nil {
		return s, nil
	}
	return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD or DD-MM", s)
}

type stringListEditor struct {
	def AttributeDefinition
}

func (e *stringListEditor) Kind() EditorKind { return EditorStringList }

func (e *stringListEditor) Render(current Value, onChange func(Value)) Form {
	list, _ := current.(StringList)
	if list == nil {
		list = StringList{}
	}
	return Form{
		Kind: EditorStringList,
		Controls: []Control{{
			Label:    e.def.Description,
			Input:    InputList,
			Required: e.def.Required,
			Value:    list,
			Apply: func(raw any) error {
				items, err := decodeStringSlice(raw)
				if err != nil {
					return err
				}
				onChange(StringList(items))
				return nil
			},
		}},
	}
}

// --- entity reference editor ---

type entitySelectEditor struct {
	def      AttributeDefinition
	entities EntityService
}

func (e *entitySelectEditor) Kind() EditorKind { return EditorEntitySelect }

// Options fetches the selectable entities for the referenced table.
func (e *entitySelectEditor) Options(ctx context.Context) ([]EntityOption, error) {
	if e.entities == nil {
		return nil, NewInternalError("entity service not configured", nil)
	}
	ref, _ := DefaultValue(TypeEntityReference).(EntityReference)
	return e.entities.ListEntities(ctx, ref.AssociatedTable)
}

func (e *entitySelectEditor) Render(current Value, onChange func(Value)) Form {
	ref, ok := current.(EntityReference)
	if !ok {
		ref = DefaultValue(TypeEntityReference).(EntityReference)
	}
	return Form{
		Kind: EditorEntitySelect,
		Controls: []Control{{
			Label:    e.def.Description,
			Input:    InputSelect,
			Required: e.def.Required,
			Value:    ref,
			Apply: func(raw any) error {
				opt, ok := raw.(EntityOption)
				if !ok {
					return fmt.Errorf("expected EntityOption, got %T", raw)
				}
				onChange(EntityReference{
					AssociatedTable:   ref.AssociatedTable,
					AssociatedTableID: opt.ID,
					Name:              opt.Name,
				})
				return nil
			},
		}},
	}
}

// --- thumbnail editor (name-based override, scalar URI value) ---

type thumbnailEditor struct {
	def AttributeDefinition
}

func (e *thumbnailEditor) Kind() EditorKind { return EditorThumbnail }

func (e *thumbnailEditor) Render(current Value, onChange func(Value)) Form {
	if current == nil {
		current = Text("")
	}
	return Form{
		Kind: EditorThumbnail,
		Controls: []Control{{
			Label:    e.def.Description,
			Input:    InputFile,
			Required: e.def.Required,
			Value:    current,
			Apply: func(raw any) error {
				s, err := decodeString(raw)
				if err != nil {
					return err
				}
				onChange(Text(s))
				return nil
			},
		}},
	}
}

// UploadTo uploads the selected file and, on success, replaces the scalar
// value with the returned URI. On failure the existing value is left
// untouched.
func (e *thumbnailEditor) UploadTo(ctx context.Context, up Uploader, filename string, body io.Reader, onChange func(Value)) error {
	uri, err := up.Upload(ctx, filename, body)
	if err != nil {
		return NewUploadError(e.def.ID, e.def.Name, err)
	}
	onChange(Text(uri))
	return nil
}

// --- structured record editors ---

// recordField names the sub-fields of a structured record that accept file
// uploads.
const (
	fieldFilePath      = "file_path"
	fieldThumbnailPath = "thumbnail_path"
)

type audioEditor struct {
	def AttributeDefinition
}

func (e *audioEditor) Kind() EditorKind { return EditorAudioForm }

func (e *audioEditor) Render(current Value, onChange func(Value)) Form {
	rec, ok := current.(AudioRecord)
	if !ok {
		rec = DefaultValue(TypeAudioRecord).(AudioRecord)
	}
	apply := func(field string) func(raw any) error {
		return func(raw any) error {
			updated, err := setAudioField(rec, field, raw)
			if err != nil {
				return err
			}
			onChange(updated)
			return nil
		}
	}
	req := e.def.Required
	return Form{
		Kind: EditorAudioForm,
		Controls: []Control{
			{Field: "title", Label: "Title", Input: InputText, Required: req, Value: rec.Title, Apply: apply("title")},
			{Field: "description", Label: "Description", Input: InputText, Required: req, Value: rec.Description, Apply: apply("description")},
			{Field: fieldFilePath, Label: "Audio File", Input: InputFile, Required: req, Value: rec.FilePath, Apply: apply(fieldFilePath)},
			{Field: fieldThumbnailPath, Label: "Thumbnail Image", Input: InputFile, Required: req, Value: rec.ThumbnailPath, Apply: apply(fieldThumbnailPath)},
			{Field: "lyrics", Label: "Lyrics", Input: InputText, Required: req, Value: rec.Lyrics, Apply: apply("lyrics")},
			{Field: "genre", Label: "Genre", Input: InputText, Required: req, Value: rec.Genre, Apply: apply("genre")},
			{Field: "composer", Label: "Composer", Input: InputText, Required: req, Value: rec.Composer, Apply: apply("composer")},
			{Field: "performers", Label: "Performers", Input: InputText, Required: req, Value: rec.Performers, Apply: apply("performers")},
			{Field: "instruments", Label: "Instruments", Input: InputText, Required: req, Value: rec.Instruments, Apply: apply("instruments")},
		},
	}
}

// UploadField uploads a file for one sub-field and writes the returned URI
// into that sub-field only. Failure leaves the record untouched.
func (e *audioEditor) UploadField(ctx context.Context, up Uploader, current Value, field string, filename string, body io.Reader, onChange func(Value)) error {
	return uploadRecordField(ctx, up, e.def, current, field, filename, body, onChange, func(v Value, field, uri string) (Value, error) {
		rec, ok := v.(AudioRecord)
		if !ok {
			rec = DefaultValue(TypeAudioRecord).(AudioRecord)
		}
		return setAudioField(rec, field, uri)
	})
}

func setAudioField(rec AudioRecord, field string, raw any) (Value, error) {
	switch field {
	case "title", "description", fieldFilePath, fieldThumbnailPath, "lyrics", "composer":
		s, err := decodeString(raw)
		if err != nil {
			return nil, err
		}
		switch field {
		case "title":
			rec.Title = s
		case "description":
			rec.Description = s
		case fieldFilePath:
			rec.FilePath = s
		case fieldThumbnailPath:
			rec.ThumbnailPath = s
		case "lyrics":
			rec.Lyrics = s
		case "composer":
			rec.Composer = s
		}
	case "genre", "performers", "instruments":
		// Comma-separated entry, matching the editor's text inputs.
		list, err := decodeStringSlice(raw)
		if err != nil {
			return nil, err
		}
		switch field {
		case "genre":
			rec.Genre = list
		case "performers":
			rec.Performers = list
		case "instruments":
			rec.Instruments = list
		}
	default:
		return nil, fmt.Errorf("unknown audio field %q", field)
	}
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return rec, nil
}

type videoEditor struct {
	def AttributeDefinition
}

func (e *videoEditor) Kind() EditorKind { return EditorVideoForm }

func (e *videoEditor) Render(current Value, onChange func(Value)) Form {
	rec, ok := current.(VideoRecord)
	if !ok {
		rec = DefaultValue(TypeVideoRecord).(VideoRecord)
	}
	apply := func(field string) func(raw any) error {
		return func(raw any) error {
			updated, err := setMediaField(rec, field, raw)
			if err != nil {
				return err
			}
			onChange(updated)
			return nil
		}
	}
	req := e.def.Required
	return Form{
		Kind: EditorVideoForm,
		Controls: []Control{
			{Field: "title", Label: "Title", Input: InputText, Required: req, Value: rec.Title, Apply: apply("title")},
			{Field: "description", Label: "Description", Input: InputText, Required: req, Value: rec.Description, Apply: apply("description")},
			{Field: fieldThumbnailPath, Label: "Thumbnail Image", Input: InputFile, Required: req, Value: rec.ThumbnailPath, Apply: apply(fieldThumbnailPath)},
			{Field: fieldFilePath, Label: "Video Source", Input: InputFile, Required: req, Value: rec.FilePath, Apply: applyVideoSource(rec, onChange)},
		},
	}
}

// applyVideoSource accepts either an uploaded URI or a YouTube watch URL,
// storing the embed form for the latter.
func applyVideoSource(rec VideoRecord, onChange func(Value)) func(raw any) error {
	return func(raw any) error {
		s, err := decodeString(raw)
		if err != nil {
			return err
		}
		if embed, ok := YouTubeEmbedURL(s); ok {
			s = embed
		}
		updated, err := setMediaField(rec, fieldFilePath, s)
		if err != nil {
			return err
		}
		onChange(updated)
		return nil
	}
}

func (e *videoEditor) UploadField(ctx context.Context, up Uploader, current Value, field string, filename string, body io.Reader, onChange func(Value)) error {
	return uploadRecordField(ctx, up, e.def, current, field, filename, body, onChange, func(v Value, field, uri string) (Value, error) {
		rec, ok := v.(VideoRecord)
		if !ok {
			rec = DefaultValue(TypeVideoRecord).(VideoRecord)
		}
		return setMediaField(rec, field, uri)
	})
}

type documentEditor struct {
	def AttributeDefinition
}

func (e *documentEditor) Kind() EditorKind { return EditorDocumentForm }

func (e *documentEditor) Render(current Value, onChange func(Value)) Form {
	rec, ok := current.(DocumentRecord)
	if !ok {
		rec = DefaultValue(TypeDocumentRecord).(DocumentRecord)
	}
	apply := func(field string) func(raw any) error {
		return func(raw any) error {
			updated, err := setMediaField(rec, field, raw)
			if err != nil {
				return err
			}
			onChange(updated)
			return nil
		}
	}
	req := e.def.Required
	return Form{
		Kind: EditorDocumentForm,
		Controls: []Control{
			{Field: "title", Label: "Title", Input: InputText, Required: req, Value: rec.Title, Apply: apply("title")},
			{Field: "description", Label: "Description", Input: InputText, Required: req, Value: rec.Description, Apply: apply("description")},
			{Field: fieldFilePath, Label: "File Path", Input: InputText, Required: req, Value: rec.FilePath, Apply: apply(fieldFilePath)},
			{Field: fieldThumbnailPath, Label: "Thumbnail Path", Input: InputText, Required: req, Value: rec.ThumbnailPath, Apply: apply(fieldThumbnailPath)},
		},
	}
}

type imageEditor struct {
	def AttributeDefinition
}

func (e *imageEditor) Kind() EditorKind { return EditorImageForm }

func (e *imageEditor) Render(current Value, onChange func(Value)) Form {
	rec, ok := current.(ImageRecord)
	if !ok {
		rec = DefaultValue(TypeImageRecord).(ImageRecord)
	}
	apply := func(field string) func(raw any) error {
		return func(raw any) error {
			updated, err := setMediaField(rec, field, raw)
			if err != nil {
				return err
			}
			onChange(updated)
			return nil
		}
	}
	req := e.def.Required
	return Form{
		Kind: EditorImageForm,
		Controls: []Control{
			{Field: "title", Label: "Title", Input: InputText, Required: req, Value: rec.Title, Apply: apply("title")},
			{Field: "description", Label: "Description", Input: InputText, Required: req, Value: rec.Description, Apply: apply("description")},
			{Field: fieldFilePath, Label: "Image File", Input: InputFile, Required: req, Value: rec.FilePath, Apply: apply(fieldFilePath)},
			{Field: fieldThumbnailPath, Label: "Thumbnail Image", Input: InputFile, Required: req, Value: rec.ThumbnailPath, Apply: apply(fieldThumbnailPath)},
			{Field: "mime_type", Label: "MIME Type", Input: InputText, Required: false, Value: rec.MimeType, Apply: apply("mime_type")},
		},
	}
}

func (e *imageEditor) UploadField(ctx context.Context, up Uploader, current Value, field string, filename string, body io.Reader, onChange func(Value)) error {
	return uploadRecordField(ctx, up, e.def, current, field, filename, body, onChange, func(v Value, field, uri string) (Value, error) {
		rec, ok := v.(ImageRecord)
		if !ok {
			rec = DefaultValue(TypeImageRecord).(ImageRecord)
		}
		return setMediaField(rec, field, uri)
	})
}

// setMediaField updates one sub-field of a video, document, or image record.
func setMediaField[R VideoRecord | DocumentRecord | ImageRecord](rec R, field string, raw any) (Value, error) {
	s, err := decodeString(raw)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	switch r := any(&rec).(type) {
	case *VideoRecord:
		if err := setCommonMediaField(&r.Title, &r.Description, &r.FilePath, &r.ThumbnailPath, &r.MimeType, field, s); err != nil {
			return nil, err
		}
		r.UpdatedAt = now
		return *r, nil
	case *DocumentRecord:
		if err := setCommonMediaField(&r.Title, &r.Description, &r.FilePath, &r.ThumbnailPath, &r.MimeType, field, s); err != nil {
			return nil, err
		}
		r.UpdatedAt = now
		return *r, nil
	case *ImageRecord:
		if err := setCommonMediaField(&r.Title, &r.Description, &r.FilePath, &r.ThumbnailPath, &r.MimeType, field, s); err != nil {
			return nil, err
		}
		r.UpdatedAt = now
		return *r, nil
	default:
		return nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

func setCommonMediaField(title, description, filePath, thumbnailPath, mimeType *string, field, s string) error {
	switch field {
	case "title":
		*title = s
	case "description":
		*description = s
	case fieldFilePath:
		*filePath = s
	case fieldThumbnailPath:
		*thumbnailPath = s
	case "mime_type":
		*mimeType = s
	default:
		return fmt.Errorf("unknown record field %q", field)
	}
	return nil
}

// uploadRecordField performs the upload round-trip shared by the structured
// record editors: on success exactly one sub-field of exactly one record is
// replaced with the returned URI; on failure the record is untouched and the
// error is reported at field level. Two uploads racing on the same sub-field
// resolve last-write-wins.
func uploadRecordField(
	ctx context.Context,
	up Uploader,
	def AttributeDefinition,
	current Value,
	field string,
	filename string,
	body io.Reader,
	onChange func(Value),
	set func(v Value, field, uri string) (Value, error),
) error {
	if field != fieldFilePath && field != fieldThumbnailPath {
		return NewUploadError(def.ID, field, fmt.Errorf("field %q does not accept uploads", field))
	}
	uri, err := up.Upload(ctx, filename, body)
	if err != nil {
		return NewUploadError(def.ID, field, err)
	}
	updated, err := set(current, field, uri)
	if err != nil {
		return NewUploadError(def.ID, field, err)
	}
	onChange(updated)
	return nil
}

// YouTubeEmbedURL converts a youtube.com/watch or youtu.be URL into its embed
// form. Returns false for anything that is not a recognizable YouTube URL.
func YouTubeEmbedURL(raw string) (string, bool) {
	if !strings.Contains(raw, "youtube.com") && !strings.Contains(raw, "youtu.be") {
		return "", false
	}
	var id string
	switch {
	case strings.Contains(raw, "youtu.be/"):
		id = after(raw, "youtu.be/")
	case strings.Contains(raw, "v="):
		id = after(raw, "v=")
	case strings.Contains(raw, "/embed/"):
		id = after(raw, "/embed/")
	}
	if parts := strings.FieldsFunc(id, func(r rune) bool {
		return r == '&' || r == '?' || r == '/' || r == '#'
	}); len(parts) > 0 {
		id = parts[0]
	} else {
		id = ""
	}
	if len(id) != 11 {
		return "", false
	}
	return "https://www.youtube.com/embed/" + id, true
}

func after(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return ""
}
