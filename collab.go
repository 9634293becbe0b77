package authoring

import (
	"context"
	"io"
)

// CategoryService provides category configuration: the categories themselves
// and the ordered attribute definitions for one category.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CategoryAttributes(ctx context.Context, categoryID int64) ([]AttributeDefinition, error)
}

// EntityService lists the selectable entities for entity-reference editors.
type EntityService interface {
	ListEntities(ctx context.Context, table string) ([]EntityOption, error)
}

// Uploader accepts a single file and returns a durable URI. A failed upload
// guarantees no partial state; callers keep the previous value.
type Uploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (string, error)
}

// ContentService accepts an assembled submission payload.
type ContentService interface {
	CreateItem(ctx context.Context, payload SubmissionPayload) error
}
