package enums

import "fmt"

// ChangeEventType mirrors the row-level change kinds the invalidation
// bridge subscribes to.
type ChangeEventType string

const (
	ChangeEventInsert ChangeEventType = "INSERT"
	ChangeEventUpdate ChangeEventType = "UPDATE"
	ChangeEventDelete ChangeEventType = "DELETE"
)

var validChangeEventTypes = []ChangeEventType{
	ChangeEventInsert,
	ChangeEventUpdate,
	ChangeEventDelete,
}

// String implements fmt.Stringer.
func (c ChangeEventType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChangeEventType.
func (c ChangeEventType) IsValid() bool {
	for _, candidate := range validChangeEventTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChangeEventType converts raw input into a ChangeEventType.
func ParseChangeEventType(value string) (ChangeEventType, error) {
	for _, candidate := range validChangeEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change event type %q", value)
}
