package validation

import (
	"fmt"
	"strings"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
)

// Kind classifies a violation.
type Kind string

const (
	KindTypeMismatch Kind = "type_mismatch"
	KindConstraint   Kind = "constraint_violation"
	KindUniqueness   Kind = "uniqueness_conflict"
	KindReference    Kind = "reference_error"
	KindState        Kind = "state_error"
)

// Constraint identifiers reported in violations.
const (
	ConstraintType      = "type"
	ConstraintRequired  = "required"
	ConstraintLength    = "length"
	ConstraintRange     = "range"
	ConstraintPattern   = "pattern"
	ConstraintPrecision = "precision"
	ConstraintOptions   = "option_membership"
	ConstraintFileSize  = "file_size"
	ConstraintFileType  = "file_type"
	ConstraintFormat    = "format"
	ConstraintUnique    = "unique"
	ConstraintField     = "field"
)

// Violation is one failed check of a submission.
type Violation struct {
	Kind       Kind           `json:"kind"`
	Constraint string         `json:"constraint"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

// Rejection is the ordered set of violations found for one submission.
type Rejection struct {
	FieldID    id.ID       `json:"field_id"`
	Label      string      `json:"label,omitempty"`
	Violations []Violation `json:"violations"`
}

// Error implements error.
func (r *Rejection) Error() string {
	parts := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		parts = append(parts, v.Constraint)
	}
	return fmt.Sprintf("field %q rejected: %s", r.Label, strings.Join(parts, ", "))
}

// Kind returns the dominant classification: a type mismatch, reference or
// state error stands alone; uniqueness is reported only when it is the sole
// problem; anything else is a constraint violation.
func (r *Rejection) Kind() Kind {
	if len(r.Violations) == 0 {
		return KindConstraint
	}
	onlyUnique := true
	for _, v := range r.Violations {
		switch v.Kind {
		case KindTypeMismatch, KindReference, KindState:
			return v.Kind
		case KindUniqueness:
		default:
			onlyUnique = false
		}
	}
	if onlyUnique {
		return KindUniqueness
	}
	return KindConstraint
}

// Has reports whether a violation with the given constraint identifier exists.
func (r *Rejection) Has(constraint string) bool {
	for _, v := range r.Violations {
		if v.Constraint == constraint {
			return true
		}
	}
	return false
}

// Constraints lists the violated constraint identifiers in order.
func (r *Rejection) Constraints() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Constraint)
	}
	return out
}

// AppError converts the rejection into the platform error shape.
func (r *Rejection) AppError() *apperror.AppError {
	var e *apperror.AppError
	switch r.Kind() {
	case KindTypeMismatch:
		e = apperror.NewTypeMismatch("value does not match the field type")
	case KindUniqueness:
		e = apperror.NewUniquenessConflict("value is already in use")
	case KindReference:
		e = apperror.NewReference("field", r.FieldID.String())
	case KindState:
		e = apperror.NewState("field does not accept values")
	default:
		e = apperror.NewConstraintViolation("value violates field constraints")
	}
	return e.
		WithDetail("field_id", r.FieldID.String()).
		WithDetail("label", r.Label).
		WithDetail("violations", r.Violations).
		WithCause(r)
}

func (r *Rejection) add(kind Kind, constraint, message string, details map[string]any) {
	r.Violations = append(r.Violations, Violation{
		Kind:       kind,
		Constraint: constraint,
		Message:    message,
		Details:    details,
	})
}

// NewReferenceRejection reports a submission whose field does not resolve
// or resolves to a deleted definition.
func NewReferenceRejection(fieldID id.ID, message string) *Rejection {
	r := &Rejection{FieldID: fieldID}
	r.add(KindReference, ConstraintField, message, nil)
	return r
}

// NewStateRejection reports a submission against a field whose lifecycle
// state forbids it.
func NewStateRejection(fieldID id.ID, label, message string) *Rejection {
	r := &Rejection{FieldID: fieldID, Label: label}
	r.add(KindState, ConstraintField, message, nil)
	return r
}
