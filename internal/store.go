package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	authoring "github.com/arabhyaWorks/arunachal-authoring"
)

// DB is the subset of pgxpool.Pool the store uses. Tests substitute a mock.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CategoryStore reads category and attribute configuration from Postgres
// and persists submitted content items.
type CategoryStore struct {
	db     DB
	logger *zap.SugaredLogger
}

// NewCategoryStore creates a store on top of a pgx pool or compatible
// connection.
func NewCategoryStore(db DB, logger *zap.SugaredLogger) *CategoryStore {
	if logger == nil {
		logger = zap.S()
	}
	return &CategoryStore{db: db, logger: logger}
}

// ListCategories returns all categories ordered by id.
func (s *CategoryStore) ListCategories(ctx context.Context) ([]authoring.Category, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description
		FROM categories
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []authoring.Category
	for rows.Next() {
		var c authoring.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// CategoryAttributes returns the attribute definitions configured for a
// category, in display order.
func (s *CategoryStore) CategoryAttributes(ctx context.Context, categoryID int64) ([]authoring.AttributeDefinition, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check category %d: %w", categoryID, err)
	}
	if !exists {
		return nil, authoring.NewAuthoringError(authoring.ErrorTypeNotFound, authoring.ErrCodeCategoryNotFound,
			fmt.Sprintf("category %d does not exist", categoryID))
	}

	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.name, a.description, a.attribute_type_id, a.is_required
		FROM attributes a
		JOIN category_attributes ca ON ca.attribute_id = a.id
		WHERE ca.category_id = $1
		ORDER BY ca.display_order, a.id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query attributes for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	var defs []authoring.AttributeDefinition
	for rows.Next() {
		var d authoring.AttributeDefinition
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.TypeID, &d.Required); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attributes: %w", err)
	}
	return defs, nil
}

// AttributeTypes returns the registered attribute types ordered by id.
func (s *CategoryStore) AttributeTypes(ctx context.Context) ([]authoring.AttributeTypeInfo, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name
		FROM attribute_types
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query attribute types: %w", err)
	}
	defer rows.Close()

	var types []authoring.AttributeTypeInfo
	for rows.Next() {
		var t authoring.AttributeTypeInfo
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan attribute type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attribute types: %w", err)
	}
	return types, nil
}

// ListEntities returns `{id, name}` options for a referenced entity table.
// Table names are allowlisted; identifiers cannot be parameterized.
func (s *CategoryStore) ListEntities(ctx context.Context, table string) ([]authoring.EntityOption, error) {
	if table != "tribes" {
		return nil, fmt.Errorf("unknown entity table %q", table)
	}

	rows, err := s.db.Query(ctx, `SELECT id, name FROM tribes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var opts []authoring.EntityOption
	for rows.Next() {
		var o authoring.EntityOption
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		opts = append(opts, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return opts, nil
}

// CreateItem persists a submitted content item and its attribute values.
// Attribute values are stored as JSON in the shape the payload carries.
func (s *CategoryStore) CreateItem(ctx context.Context, payload authoring.SubmissionPayload) error {
	var itemID int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO content_items (category_id, name, description, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		payload.CategoryID, payload.Name, payload.Description, payload.UserID).Scan(&itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("insert content item: no id returned")
		}
		return fmt.Errorf("insert content item: %w", err)
	}

	for _, attr := range payload.Attributes {
		raw, err := json.Marshal(attr.Value)
		if err != nil {
			return fmt.Errorf("marshal value for attribute %d: %w", attr.AttributeID, err)
		}
		_, err = s.db.Exec(ctx, `
			INSERT INTO content_item_attributes (item_id, attribute_id, attribute_type_id, value)
			VALUES ($1, $2, $3, $4)`,
			itemID, attr.AttributeID, attr.TypeID, raw)
		if err != nil {
			return fmt.Errorf("insert value for attribute %d: %w", attr.AttributeID, err)
		}
	}

	s.logger.Infow("content item stored", "item_id", itemID, "category_id", payload.CategoryID, "attributes", len(payload.Attributes))
	return nil
}
