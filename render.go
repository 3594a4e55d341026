package docmerge

import (
	"fmt"
	"regexp"
	"strings"
)

// addressPattern is a deliberately conservative syntax check. It rejects
// some exotic but technically valid addresses; deliverability is the
// transport's problem.
var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// tokenPattern matches {key} tokens in email subject and body text.
var tokenPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// ValidateAddress reports whether the address passes the syntax check.
// Surrounding whitespace is not tolerated.
func ValidateAddress(address string) bool {
	return addressPattern.MatchString(address)
}

// CheckAddress validates an address and returns ErrInvalidEmail wrapped
// with the offending value when it fails.
func CheckAddress(address string) error {
	if !ValidateAddress(address) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, address)
	}
	return nil
}

// RenderText substitutes {key} tokens in email subject or body text with
// values from the row. Substitution is literal and case-sensitive: only
// an exact key match resolves, and tokens with no matching key are left
// visible in the output so a typo shows up in the result instead of
// silently vanishing.
func RenderText(text string, data RowData) string {
	if len(data) == 0 || !strings.Contains(text, "{") {
		return text
	}

	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := token[1 : len(token)-1]
		if v, ok := data[key]; ok {
			return v
		}
		return token
	})
}

// TemplatePlaceholders lists the distinct {key} tokens in email subject
// or body text, in order of first appearance. Interior whitespace is
// trimmed from the returned names.
func TemplatePlaceholders(text string) []string {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
