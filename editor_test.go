package authoring

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEntityService struct {
	options []EntityOption
	err     error
	table   string
}

func (s *stubEntityService) ListEntities(_ context.Context, table string) ([]EntityOption, error) {
	s.table = table
	return s.options, s.err
}

type stubUploader struct {
	uri      string
	err      error
	filename string
	calls    int
}

func (s *stubUploader) Upload(_ context.Context, filename string, body io.Reader) (string, error) {
	s.calls++
	s.filename = filename
	io.Copy(io.Discard, body)
	if s.err != nil {
		return "", s.err
	}
	return s.uri, nil
}

func TestSelectEditorByType(t *testing.T) {
	d := NewDispatcher(nil)

	tests := []struct {
		name string
		def  AttributeDefinition
		want EditorKind
	}{
		{"plain text", AttributeDefinition{Name: "cat-Festivals-FestivalName", TypeID: TypePlainText}, EditorText},
		{"string array", AttributeDefinition{Name: "cat-Festivals-Rituals", TypeID: TypeStringArray}, EditorStringList},
		{"entity reference", AttributeDefinition{Name: "cat-Festivals-Tribe", TypeID: TypeEntityReference}, EditorEntitySelect},
		{"audio", AttributeDefinition{Name: "cat-FolkMusic-Song", TypeID: TypeAudioRecord}, EditorAudioForm},
		{"video", AttributeDefinition{Name: "cat-FolkDance-Clip", TypeID: TypeVideoRecord}, EditorVideoForm},
		{"document", AttributeDefinition{Name: "cat-Scripts-Manuscript", TypeID: TypeDocumentRecord}, EditorDocumentForm},
		{"date", AttributeDefinition{Name: "cat-Festivals-Month", TypeID: TypeDateDDMM}, EditorDateDDMM},
		{"unknown type edits as text", AttributeDefinition{Name: "cat-Misc-Field", TypeID: TypeID(99)}, EditorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.SelectEditor(tt.def).Kind())
		})
	}
}

func TestSelectEditorNameOverridesBeatType(t *testing.T) {
	d := NewDispatcher(nil)

	t.Run("thumbnail name wins over declared type", func(t *testing.T) {
		def := AttributeDefinition{Name: "cat-Festivals-ThumbImage", TypeID: TypePlainText}
		assert.Equal(t, EditorThumbnail, d.SelectEditor(def).Kind())
	})

	t.Run("thumbnail match is case-insensitive", func(t *testing.T) {
		def := AttributeDefinition{Name: "cat-Festivals-Thumbnail", TypeID: TypeStringArray}
		assert.Equal(t, EditorThumbnail, d.SelectEditor(def).Kind())
	})

	t.Run("festival date gets the day-month picker", func(t *testing.T) {
		def := AttributeDefinition{Name: "cat-Festivals-DateOfCelebration", TypeID: TypePlainText}
		assert.Equal(t, EditorDateDDMM, d.SelectEditor(def).Kind())
	})

	t.Run("thumbnail rule outranks festival date rule", func(t *testing.T) {
		// A name matching both patterns resolves to the earlier rule.
		def := AttributeDefinition{Name: "cat-Festivals-ImageOfCelebration", TypeID: TypePlainText}
		assert.Equal(t, EditorThumbnail, d.SelectEditor(def).Kind())
	})
}

func TestTextEditorApply(t *testing.T) {
	d := NewDispatcher(nil)
	ed := d.SelectEditor(AttributeDefinition{Name: "cat-Festivals-FestivalName", TypeID: TypePlainText})

	var got Value
	form := ed.Render(nil, func(v Value) { got = v })
	require.Len(t, form.Controls, 1)

	require.NoError(t, form.Controls[0].Apply("Nyokum"))
	assert.Equal(t, Text("Nyokum"), got)
}

func TestDateEditorConvertsPickerValue(t *testing.T) {
	d := NewDispatcher(nil)
	ed := d.SelectEditor(AttributeDefinition{Name: "cat-Festivals-DateOfCelebration", TypeID: TypePlainText})

	var got Value
	form := ed.Render(nil, func(v Value) { got = v })
	require.Len(t, form.Controls, 1)

	t.Run("full date keeps day-month only", func(t *testing.T) {
		require.NoError(t, form.Controls[0].Apply("2026-04-15"))
		assert.Equal(t, Date("15-04"), got)
	})

	t.Run("already formatted passes through", func(t *testing.T) {
		require.NoError(t, form.Controls[0].Apply("26-02"))
		assert.Equal(t, Date("26-02"), got)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		assert.Error(t, form.Controls[0].Apply("sometime in spring"))
	})
}

func TestStringListEditorApply(t *testing.T) {
	d := NewDispatcher(nil)
	ed := d.SelectEditor(AttributeDefinition{Name: "cat-Festivals-Rituals", TypeID: TypeStringArray})

	var got Value
	form := ed.Render(nil, func(v Value) { got = v })

	require.NoError(t, form.Controls[0].Apply([]string{"dance", "feast"}))
	assert.Equal(t, StringList{"dance", "feast"}, got)
}

func TestEntitySelectEditor(t *testing.T) {
	svc := &stubEntityService{options: []EntityOption{{ID: 14, Name: "Nyishi"}, {ID: 2, Name: "Adi"}}}
	d := NewDispatcher(svc)
	ed := d.SelectEditor(AttributeDefinition{Name: "cat-Festivals-Tribe", TypeID: TypeEntityReference})

	sel, ok := ed.(interface {
		Options(context.Context) ([]EntityOption, error)
	})
	require.True(t, ok)

	opts, err := sel.Options(context.Background())
	require.NoError(t, err)
	assert.Len(t, opts, 2)
	assert.Equal(t, "tribes", svc.table)

	var got Value
	form := ed.Render(nil, func(v Value) { got = v })
	require.NoError(t, form.Controls[0].Apply(EntityOption{ID: 14, Name: "Nyishi"}))
	assert.Equal(t, EntityReference{AssociatedTable: "tribes", AssociatedTableID: 14, Name: "Nyishi"}, got)

	t.Run("non-option input rejected", func(t *testing.T) {
		assert.Error(t, form.Controls[0].Apply("Nyishi"))
	})
}

func TestThumbnailEditorUpload(t *testing.T) {
	d := NewDispatcher(nil)
	ed := d.SelectEditor(AttributeDefinition{ID: 4, Name: "cat-Festivals-Thumbnail", TypeID: TypePlainText})

	th, ok := ed.(*thumbnailEditor)
	require.True(t, ok)

	t.Run("success replaces value with URI", func(t *testing.T) {
		up := &stubUploader{uri: "https://cdn/thumb.jpg"}
		var got Value
		err := th.UploadTo(context.Background(), up, "thumb.jpg", strings.NewReader("img"), func(v Value) { got = v })
		require.NoError(t, err)
		assert.Equal(t, Text("https://cdn/thumb.jpg"), got)
	})

	t.Run("failure leaves value untouched", func(t *testing.T) {
		up := &stubUploader{err: errors.New("network down")}
		var fired bool
		err := th.UploadTo(context.Background(), up, "thumb.jpg", strings.NewReader("img"), func(Value) { fired = true })
		require.Error(t, err)
		assert.True(t, IsUploadError(err))
		assert.False(t, fired)
	})
}

func TestAudioEditorForm(t *testing.T) {
	d := NewDispatcher(nil)
	ed := d.SelectEditor(AttributeDefinition{ID: 8, Name: "cat-FolkMusic-Song", TypeID: TypeAudioRecord})

	var got Value
	form := ed.Render(nil, func(v Value) { got = v })
	require.Len(t, form.Controls, 9)

	byField := make(map[string]Control, len(form.Controls))
	for _, c := range form.Controls {
		byField[c.Field] = c
	}

	require.NoError(t, byField["title"].Apply("Nyokum song"))
	rec := got.(AudioRecord)
	assert.Equal(t, "Nyokum song", rec.Title)
	assert.NotEmpty(t, rec.UpdatedAt)

	t.Run("list fields split on commas", func(t *testing.T) {
		require.NoError(t, byField["genre"].Apply("folk, ritual"))
		rec := got.(AudioRecord)
		assert.Equal(t, []string{"folk", "ritual"}, rec.Genre)
	})
}

func TestAudioEditorUploadField(t *testing.T) {
	d := NewDispatcher(nil)
	ed := d.SelectEditor(AttributeDefinition{ID: 8, Name: "cat-FolkMusic-Song", TypeID: TypeAudioRecord}).(*audioEditor)

	current := AudioRecord{Title: "Song", FilePath: "old.mp3"}

	t.Run("uploads into the requested sub-field only", func(t *testing.T) {
		up := &stubUploader{uri: "https://cdn/new.mp3"}
		var got Value
		err := ed.UploadField(context.Background(), up, current, "file_path", "new.mp3", strings.NewReader("audio"), func(v Value) { got = v })
		require.NoError(t, err)

		rec := got.(AudioRecord)
		assert.Equal(t, "https://cdn/new.mp3", rec.FilePath)
		assert.Equal(t, "Song", rec.Title, "other sub-fields untouched")
	})

	t.Run("failed upload leaves record untouched", func(t *testing.T) {
		up := &stubUploader{err: errors.New("boom")}
		var fired bool
		err := ed.UploadField(context.Background(), up, current, "thumbnail_path", "t.jpg", strings.NewReader("img"), func(Value) { fired = true })
		require.Error(t, err)
		assert.True(t, IsUploadError(err))
		assert.False(t, fired)
	})

	t.Run("non-file sub-fields reject uploads", func(t *testing.T) {
		up := &stubUploader{uri: "https://cdn/x"}
		err := ed.UploadField(context.Background(), up, current, "lyrics", "x", strings.NewReader("x"), func(Value) {})
		require.Error(t, err)
		assert.Zero(t, up.calls, "rejected before any network call")
	})
}

func TestVideoEditorYouTubeSource(t *testing.T) {
	d := NewDispatcher(nil)
	ed := d.SelectEditor(AttributeDefinition{ID: 9, Name: "cat-FolkDance-Clip", TypeID: TypeVideoRecord})

	var got Value
	form := ed.Render(nil, func(v Value) { got = v })

	var source Control
	for _, c := range form.Controls {
		if c.Field == "file_path" {
			source = c
		}
	}
	require.NotNil(t, source.Apply)

	t.Run("watch URL stored as embed", func(t *testing.T) {
		require.NoError(t, source.Apply("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
		rec := got.(VideoRecord)
		assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", rec.FilePath)
	})

	t.Run("plain URI stored as-is", func(t *testing.T) {
		require.NoError(t, source.Apply("https://cdn/dance.mp4"))
		rec := got.(VideoRecord)
		assert.Equal(t, "https://cdn/dance.mp4", rec.FilePath)
	})
}

func TestYouTubeEmbedURL(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		valid bool
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"watch URL with extras", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30s", "https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"already embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"not youtube", "https://cdn/dance.mp4", "", false},
		{"youtube without id", "https://www.youtube.com/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := YouTubeEmbedURL(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImageEditorForm(t *testing.T) {
	d := NewDispatcher(nil)
	// Type dispatch, so the definition name must not trip the thumbnail rule.
	ed := d.SelectEditor(AttributeDefinition{ID: 11, Name: "cat-Textiles-Pattern", TypeID: TypeImageRecord})
	require.Equal(t, EditorImageForm, ed.Kind())

	var got Value
	form := ed.Render(nil, func(v Value) { got = v })

	byField := make(map[string]Control, len(form.Controls))
	for _, c := range form.Controls {
		byField[c.Field] = c
	}
	require.Contains(t, byField, "thumbnail_path")

	require.NoError(t, byField["title"].Apply("Gale weave"))
	rec := got.(ImageRecord)
	assert.Equal(t, "Gale weave", rec.Title)
	assert.Equal(t, "image", rec.MediaType, "defaults survive field edits")
}

func TestImageEditorSatisfiesRequiredRule(t *testing.T) {
	def := AttributeDefinition{ID: 11, Name: "cat-Textiles-Pattern", TypeID: TypeImageRecord, Required: true}
	defs := []AttributeDefinition{def}
	d := NewDispatcher(nil)
	ed := d.SelectEditor(def)

	vm := NewValueMap()
	current := Value(nil)
	onChange := func(v Value) {
		current = v
		vm.Set(def.ID, v)
	}

	// Fill every required control the form renders, re-rendering against
	// the accumulated value each time.
	inputs := map[string]string{
		"title":          "Gale weave",
		"description":    "Traditional Galo skirt pattern",
		"file_path":      "https://cdn/gale.jpg",
		"thumbnail_path": "https://cdn/gale-thumb.jpg",
	}
	for field, raw := range inputs {
		form := ed.Render(current, onChange)
		for _, c := range form.Controls {
			if c.Field == field {
				require.NoError(t, c.Apply(raw))
			}
		}
	}

	assert.True(t, IsSubmittable("Gale weave", defs, vm),
		"a fully filled image form must pass its own required rule")
	assert.False(t, Validate("Gale weave", defs, vm).HasErrors())
}

func TestImageEditorUploadField(t *testing.T) {
	d := NewDispatcher(nil)
	ed := d.SelectEditor(AttributeDefinition{ID: 11, Name: "cat-Textiles-Pattern", TypeID: TypeImageRecord}).(*imageEditor)

	current := ImageRecord{Title: "Gale weave", MediaType: "image"}

	t.Run("thumbnail upload writes its sub-field only", func(t *testing.T) {
		up := &stubUploader{uri: "https://cdn/gale-thumb.jpg"}
		var got Value
		err := ed.UploadField(context.Background(), up, current, "thumbnail_path", "thumb.jpg", strings.NewReader("img"), func(v Value) { got = v })
		require.NoError(t, err)

		rec := got.(ImageRecord)
		assert.Equal(t, "https://cdn/gale-thumb.jpg", rec.ThumbnailPath)
		assert.Equal(t, "Gale weave", rec.Title)
	})

	t.Run("failed upload leaves record untouched", func(t *testing.T) {
		up := &stubUploader{err: errors.New("bucket unreachable")}
		var fired bool
		err := ed.UploadField(context.Background(), up, current, "file_path", "gale.jpg", strings.NewReader("img"), func(Value) { fired = true })
		require.Error(t, err)
		assert.True(t, IsUploadError(err))
		assert.False(t, fired)
	})
}
