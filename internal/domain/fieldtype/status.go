package fieldtype

import "fmt"

// Status is the lifecycle state shared by field definitions and options.
type Status string

const (
	// StatusActive is listed and submittable.
	StatusActive Status = "active"
	// StatusInactive is hidden from user-facing listings but reversible.
	StatusInactive Status = "inactive"
	// StatusDeleted is a terminal soft delete; the row stays for history.
	StatusDeleted Status = "deleted"
)

// ParseStatus converts an external value into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusDeleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another: active and inactive toggle, both may move to deleted, and
// deleted is terminal. A transition to the same status is not a transition.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusActive:
		return to == StatusInactive || to == StatusDeleted
	case StatusInactive:
		return to == StatusActive || to == StatusDeleted
	}
	return false
}
