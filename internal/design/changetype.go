// Package design holds vocabulary shared by the session controller and the
// memory store without coupling them to each other.
package design

// ChangeType categorizes the kind of UI change a file change makes.
type ChangeType string

const (
	ChangeLayout        ChangeType = "layout"
	ChangeSpacing       ChangeType = "spacing"
	ChangeColor         ChangeType = "color"
	ChangeTypography    ChangeType = "typography"
	ChangeComponent     ChangeType = "component"
	ChangeInteraction   ChangeType = "interaction"
	ChangeEmptyState    ChangeType = "empty_state"
	ChangeLoadingState  ChangeType = "loading_state"
	ChangeErrorState    ChangeType = "error_state"
	ChangeNavigation    ChangeType = "navigation"
	ChangeAnimation     ChangeType = "animation"
	ChangeAccessibility ChangeType = "accessibility"
	ChangeOther         ChangeType = "other"
)

// ChangeTypes returns the closed set of change types in canonical order.
func ChangeTypes() []ChangeType {
	return []ChangeType{
		ChangeLayout, ChangeSpacing, ChangeColor, ChangeTypography,
		ChangeComponent, ChangeInteraction, ChangeEmptyState,
		ChangeLoadingState, ChangeErrorState, ChangeNavigation,
		ChangeAnimation, ChangeAccessibility, ChangeOther,
	}
}

// Valid reports whether t is a member of the closed enumeration.
func (t ChangeType) Valid() bool {
	for _, known := range ChangeTypes() {
		if t == known {
			return true
		}
	}
	return false
}
