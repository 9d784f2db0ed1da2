package validation

import "github.com/google/uuid"

// canonical UUID text: 36 characters, dash-separated in 5 groups.
const identifierLength = 36

// ValidIdentifier reports whether id is a canonically formatted
// identifier. The length guard matters: uuid.Parse also accepts URN
// and braced forms, which upstream services reject.
func ValidIdentifier(id string) bool {
	if len(id) != identifierLength {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
