package authoring

import (
	"strconv"
)

// Assemble walks the populated value map in insertion order, joins each entry
// with its attribute definition, and produces the wire-ready attribute list
// together with the item fields. Entries whose attribute id has no matching
// definition are skipped; the consuming API is keyed by attribute_id, so
// declaration order is not reproduced. The user id is passed explicitly and
// stamped into the payload; it is never read from ambient state.
func Assemble(categoryID int64, name, description string, userID int64, defs []AttributeDefinition, vm *ValueMap) SubmissionPayload {
	byID := make(map[int64]AttributeDefinition, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}

	attrs := make([]SubmissionAttribute, 0)
	if vm != nil {
		for _, id := range vm.IDs() {
			v, ok := vm.Get(id)
			if !ok || v == nil {
				continue
			}
			def, ok := byID[id]
			if !ok {
				// Defensive: a value without a definition has no place
				// in the payload.
				continue
			}
			attrs = append(attrs, SubmissionAttribute{
				AttributeID:   def.ID,
				AttributeName: def.Name,
				TypeID:        def.TypeID,
				Value:         Normalize(def.TypeID, v),
			})
		}
	}

	return SubmissionPayload{
		CategoryID:  strconv.FormatInt(categoryID, 10),
		Name:        name,
		Description: description,
		UserID:      userID,
		Attributes:  attrs,
	}
}

// BuildPayload validates and assembles in one step: the engine's single
// entry point for callers. On validation failure the returned error is a
// *ValidationErrors and no payload is produced.
func BuildPayload(categoryID int64, name, description string, userID int64, defs []AttributeDefinition, vm *ValueMap) (SubmissionPayload, error) {
	if errs := Validate(name, defs, vm); errs.HasErrors() {
		return SubmissionPayload{}, errs
	}
	return Assemble(categoryID, name, description, userID, defs, vm), nil
}
