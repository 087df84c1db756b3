package nsub

import (
	"strings"
	"unicode"
)

const sep = "."

// IsValidSubject reports whether subject can be subscribed to: not empty, no
// whitespace or control characters, no leading or trailing separator and no empty
// segments.
func IsValidSubject(subject string) bool {
	if !validChars(subject) {
		return false
	}
	if strings.HasPrefix(subject, sep) || strings.HasSuffix(subject, sep) {
		return false
	}
	return !strings.Contains(subject, sep+sep)
}

// IsValidPrefix reports whether prefix can be prepended to a subject. It must not
// start with but must end with a separator.
func IsValidPrefix(prefix string) bool {
	if !validChars(prefix) {
		return false
	}
	return !strings.HasPrefix(prefix, sep) && strings.HasSuffix(prefix, sep)
}

// IsValidQueueGroupName reports whether queue can be used as a queue group name.
func IsValidQueueGroupName(queue string) bool {
	return validChars(queue)
}

func validChars(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
