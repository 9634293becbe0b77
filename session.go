package authoring

import (
	"context"
	"sync"
)

// SessionState tracks one authoring session's lifecycle.
type SessionState string

const (
	StateEmpty      SessionState = "empty"
	StateEditing    SessionState = "editing"
	StateValid      SessionState = "valid"
	StateSubmitting SessionState = "submitting"
	StateSuccess    SessionState = "success"
	StateFailed     SessionState = "failed"
)

// Session is one in-progress content item: the value map is its single
// source of truth until submission. There is no autosave; an abandoned
// session's values are simply discarded with it. Safe for concurrent use:
// upload completions and field edits land under one mutex, so writes are
// atomic (last write wins on the same slot).
type Session struct {
	mu sync.Mutex

	categoryID  int64
	userID      int64
	defs        []AttributeDefinition
	name        string
	description string
	values      *ValueMap

	state      SessionState
	submitting bool
	lastErr    error
}

// NewSession starts an empty session for one category. Definitions are the
// category's configuration, treated as immutable for the session's lifetime.
func NewSession(categoryID, userID int64, defs []AttributeDefinition) *Session {
	return &Session{
		categoryID: categoryID,
		userID:     userID,
		defs:       defs,
		values:     NewValueMap(),
		state:      StateEmpty,
	}
}

// SetName sets the top-level item name.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.touch()
}

// SetDescription sets the top-level item description.
func (s *Session) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = description
	s.touch()
}

// SetValue stores an attribute's editor-native value. Editors call this via
// their onChange binding.
func (s *Session) SetValue(attrID int64, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Set(attrID, v)
	s.touch()
}

// Value returns the current value for an attribute id.
func (s *Session) Value(attrID int64) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Get(attrID)
}

// OnChange returns the change callback for one attribute, for binding into
// an editor's Render.
func (s *Session) OnChange(attrID int64) func(Value) {
	return func(v Value) { s.SetValue(attrID, v) }
}

// touch records that a field changed. Edits during submission are ignored
// state-wise (the submit control is disabled while in flight).
func (s *Session) touch() {
	if s.state == StateSubmitting {
		return
	}
	if IsSubmittable(s.name, s.defs, s.values) {
		s.state = StateValid
	} else {
		s.state = StateEditing
	}
}

// State reports the session's current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the most recent submission or validation error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Validate re-checks the whole form and returns the per-field errors.
func (s *Session) Validate() *ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := Validate(s.name, s.defs, s.values)
	if s.state != StateSubmitting && s.state != StateSuccess {
		if errs.HasErrors() {
			if s.state != StateEmpty {
				s.state = StateEditing
			}
		} else {
			s.state = StateValid
		}
	}
	return errs
}

// BuildPayload assembles the session's current values; validation failure
// returns a *ValidationErrors.
func (s *Session) BuildPayload() (SubmissionPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildPayload(s.categoryID, s.name, s.description, s.userID, s.defs, s.values)
}

// Submit validates, assembles, and hands the payload to the content service.
// Only one submission may be in flight; further calls fail immediately until
// it settles. Validation failure keeps the session editing and never reaches
// the network. A remote failure preserves every entered value so the author
// can retry.
func (s *Session) Submit(ctx context.Context, svc ContentService) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return NewAuthoringError(ErrorTypeSubmission, ErrCodeSubmitInFlight, "a submission is already in flight")
	}
	if errs := Validate(s.name, s.defs, s.values); errs.HasErrors() {
		s.state = StateEditing
		s.lastErr = errs
		s.mu.Unlock()
		return errs
	}
	payload := Assemble(s.categoryID, s.name, s.description, s.userID, s.defs, s.values)
	s.submitting = true
	s.state = StateSubmitting
	s.mu.Unlock()

	err := svc.CreateItem(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.state = StateFailed
		s.lastErr = NewSubmissionError("content item creation failed", err)
		return s.lastErr
	}
	s.state = StateSuccess
	s.lastErr = nil
	s.name = ""
	s.description = ""
	s.values = NewValueMap()
	return nil
}
