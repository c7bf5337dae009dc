package enums

import "fmt"

// AssignmentStatus tracks a factory's participation in competitive quoting.
type AssignmentStatus string

const (
	AssignmentStatusRequesting AssignmentStatus = "requesting"
	AssignmentStatusResponded  AssignmentStatus = "responded"
	AssignmentStatusSelected   AssignmentStatus = "selected"
	AssignmentStatusRejected   AssignmentStatus = "rejected"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusRequesting,
	AssignmentStatusResponded,
	AssignmentStatusSelected,
	AssignmentStatusRejected,
}

// String implements fmt.Stringer.
func (a AssignmentStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (a AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
