package content

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// The app renders plain text only, so every tag is stripped rather than
// escaped.
var policy = bluemonday.StrictPolicy()

// Sanitize removes HTML from user-supplied text and trims surrounding
// whitespace. It is applied to message content and free-text profile fields.
func Sanitize(input string) string {
	return strings.TrimSpace(policy.Sanitize(input))
}
