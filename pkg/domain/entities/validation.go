package entities

import (
	"fmt"
	"strings"
)

// FieldError is a single field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every problem with an input so callers can show
// them together. A nil or empty value means the input is valid.
type ValidationErrors []FieldError

// Add appends a failure for a field
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Addf appends a formatted failure for a field
func (v *ValidationErrors) Addf(field, format string, args ...interface{}) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any failure was recorded
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Err returns the errors as an error value, or nil when there are none
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Fields returns the names of the failing fields in order
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, fe := range v {
		fields = append(fields, fe.Field)
	}
	return fields
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// WarningKind classifies a structural data-quality problem
type WarningKind int

const (
	SelfReference WarningKind = iota
	CycleDetected
	MissingParent
	CrossBOMParent
	DuplicateItem
)

// String method for WarningKind enum
func (k WarningKind) String() string {
	switch k {
	case SelfReference:
		return "self_reference"
	case CycleDetected:
		return "cycle"
	case MissingParent:
		return "missing_parent"
	case CrossBOMParent:
		return "cross_bom_parent"
	case DuplicateItem:
		return "duplicate_item"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON output
func (k WarningKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// StructuralWarning records a hierarchy problem that was resolved
// automatically. It never halts a computation.
type StructuralWarning struct {
	Kind      WarningKind `json:"kind"`
	ItemID    ItemID      `json:"item_id"`
	RelatedID ItemID      `json:"related_id,omitempty"`
	Message   string      `json:"message"`
}

func (w StructuralWarning) String() string {
	return fmt.Sprintf("%s at %s: %s", w.Kind, w.ItemID, w.Message)
}
