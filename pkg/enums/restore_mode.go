package enums

import "fmt"

// RestoreMode controls how a saved cart is applied onto a live cart.
type RestoreMode string

const (
	RestoreModeMerge   RestoreMode = "merge"
	RestoreModeReplace RestoreMode = "replace"
)

var validRestoreModes = []RestoreMode{
	RestoreModeMerge,
	RestoreModeReplace,
}

// String implements fmt.Stringer.
func (r RestoreMode) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RestoreMode.
func (r RestoreMode) IsValid() bool {
	for _, candidate := range validRestoreModes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRestoreMode converts raw input into a RestoreMode.
func ParseRestoreMode(value string) (RestoreMode, error) {
	for _, candidate := range validRestoreModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid restore mode %q", value)
}
