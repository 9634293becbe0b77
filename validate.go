package authoring

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Validate computes form-level validity for an authoring session. It checks
// the always-required item name, then every required attribute definition
// against its type-specific rule, collecting field-level errors. Validation
// never contacts the server and never fails with a transport error.
func Validate(name string, defs []AttributeDefinition, vm *ValueMap) *ValidationErrors {
	errs := NewValidationErrors()

	if name == "" {
		errs.Add(&AuthoringError{
			Type:    ErrorTypeValidation,
			Code:    ErrCodeItemNameMissing,
			Message: "item name is required",
			Field:   "name",
		})
	}

	for _, def := range defs {
		if !def.Required {
			continue
		}
		var v Value
		if vm != nil {
			v, _ = vm.Get(def.ID)
		}
		validateRequired(def, v, errs)
	}
	return errs
}

// IsSubmittable reports whether submission may proceed. It never errors; any
// rule failure simply yields false.
func IsSubmittable(name string, defs []AttributeDefinition, vm *ValueMap) bool {
	return !Validate(name, defs, vm).HasErrors()
}

func validateRequired(def AttributeDefinition, v Value, errs *ValidationErrors) {
	if v == nil {
		errs.Add(NewValidationError(def.ID, def.Name, "required attribute has no value"))
		return
	}

	switch val := v.(type) {
	case Text:
		if val == "" {
			errs.Add(NewValidationError(def.ID, def.Name, "required attribute is empty"))
		}
	case Date:
		if val == "" {
			errs.Add(NewValidationError(def.ID, def.Name, "required attribute is empty"))
		}
	case StringList:
		if len(val) == 0 {
			errs.Add(NewValidationError(def.ID, def.Name, "required attribute has no entries"))
		}
	case EntityReference:
		if val.AssociatedTableID == 0 {
			errs.Add(NewValidationError(def.ID, def.Name, "no entity selected"))
		}
	case AudioRecord:
		requireSub(def, errs,
			sub{"title", val.Title != ""},
			sub{"description", val.Description != ""},
			sub{"file_path", val.FilePath != ""},
			sub{"thumbnail_path", val.ThumbnailPath != ""},
			sub{"lyrics", val.Lyrics != ""},
			sub{"genre", len(val.Genre) > 0},
			sub{"composer", val.Composer != ""},
			sub{"performers", len(val.Performers) > 0},
			sub{"instruments", len(val.Instruments) > 0},
		)
	case VideoRecord:
		requireSub(def, errs,
			sub{"title", val.Title != ""},
			sub{"description", val.Description != ""},
			sub{"file_path", val.FilePath != ""},
			sub{"thumbnail_path", val.ThumbnailPath != ""},
		)
	case DocumentRecord:
		requireSub(def, errs,
			sub{"title", val.Title != ""},
			sub{"description", val.Description != ""},
			sub{"file_path", val.FilePath != ""},
			sub{"thumbnail_path", val.ThumbnailPath != ""},
		)
	case ImageRecord:
		requireSub(def, errs,
			sub{"title", val.Title != ""},
			sub{"description", val.Description != ""},
			sub{"file_path", val.FilePath != ""},
			sub{"thumbnail_path", val.ThumbnailPath != ""},
		)
	}
}

type sub struct {
	field string
	ok    bool
}

func requireSub(def AttributeDefinition, errs *ValidationErrors, subs ...sub) {
	for _, s := range subs {
		if !s.ok {
			errs.Add(&AuthoringError{
				Type:        ErrorTypeValidation,
				Code:        ErrCodeRequiredSubField,
				Message:     fmt.Sprintf("required sub-field '%s' is missing", s.field),
				AttributeID: def.ID,
				Field:       s.field,
			})
		}
	}
}

// submissionSchema pins the outer wire shape of a submission payload. The
// per-type attribute_value shapes are enforced by Normalize; the schema
// guards the envelope the creation endpoint parses.
const submissionSchema = `{
  "type": "object",
  "required": ["category_id", "name", "user_id", "attributes"],
  "properties": {
    "category_id": {"type": "string", "pattern": "^[0-9]+$"},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "user_id": {"type": "integer"},
    "attributes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["attribute_id", "attribute_name", "attribute_type_id", "attribute_value"],
        "properties": {
          "attribute_id": {"type": "integer"},
          "attribute_name": {"type": "string", "minLength": 1},
          "attribute_type_id": {"type": "integer"}
        }
      }
    }
  }
}`

// ValidatePayload checks an assembled payload against the submission schema.
// Used by the gateway before accepting an item.
func ValidatePayload(payload SubmissionPayload) error {
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(submissionSchema), &schema); err != nil {
		return NewInternalError("parse submission schema", err)
	}

	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return NewInternalError("resolve submission schema", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return NewInternalError("marshal payload", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return NewInternalError("unmarshal payload", err)
	}

	if err := resolved.Validate(data); err != nil {
		return NewAuthoringError(ErrorTypeValidation, ErrCodeSchemaInvalid, "payload failed schema validation").WithCause(err)
	}
	return nil
}
