// Package strings normalizes user supplied string lists such as permission
// names.
package strings

import "strings"

// DedupeAndTrim trims each value and drops blanks and repeats, keeping the
// first occurrence order.
//
//	DedupeAndTrim([]string{" ipguard.check ", "", "ipguard.check"}) // ["ipguard.check"]
func DedupeAndTrim(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DedupeAndTrimPtr is DedupeAndTrim for optional fields; nil stays nil.
func DedupeAndTrimPtr(values *[]string) *[]string {
	if values == nil {
		return nil
	}
	out := DedupeAndTrim(*values)
	return &out
}

// TrimLowerPtr trims and lowercases an optional value; nil stays nil.
func TrimLowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	return &v
}
