package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Flags submitted to a duel must use the platform wrapper, e.g. CCTF{...}.
// The wrapper is validated before any comparison so malformed input never
// reaches the resolution path.

var flagBodyPattern = regexp.MustCompile(`^[\x21-\x7a\x7c\x7e]+$`)

// ValidFlagFormat reports whether the submission matches PREFIX{body} with a
// non-empty printable body
func ValidFlagFormat(prefix string, flag string) bool {
	flag = strings.TrimSpace(flag)

	wrapper := prefix + "{"
	if !strings.HasPrefix(flag, wrapper) || !strings.HasSuffix(flag, "}") {
		return false
	}

	body := flag[len(wrapper) : len(flag)-1]
	return flagBodyPattern.MatchString(body)
}

// NormalizeFlag trims surrounding whitespace from a submission before comparison
func NormalizeFlag(flag string) string {
	return strings.TrimSpace(flag)
}

// WrapFlag builds a well-formed flag from its body, used by task seeding
func WrapFlag(prefix string, body string) string {
	return fmt.Sprintf("%s{%s}", prefix, body)
}
