package utils

import "strings"

// QuoteIdentifier wraps every dot separated part of name in backticks. Parts
// that are already backticked are left alone, so quoting is idempotent.
//
// Examples:
//   - "ch_migrations" -> "`ch_migrations`"
//   - "ops.ch_migrations" -> "`ops`.`ch_migrations`"
//   - "`ops`.ch_migrations" -> "`ops`.`ch_migrations`"
//   - "" -> ""
func QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}

	parts := splitParts(name)
	for i, part := range parts {
		if !isBackticked(part) {
			parts[i] = "`" + strings.ReplaceAll(part, "`", "``") + "`"
		}
	}

	return strings.Join(parts, ".")
}

// SplitQualifiedName splits a possibly database qualified table name into its
// unquoted database and table parts. The database is empty for a bare name.
//
// Examples:
//   - "ch_migrations" -> ("", "ch_migrations")
//   - "`ops`.`ch_migrations`" -> ("ops", "ch_migrations")
func SplitQualifiedName(name string) (string, string) {
	parts := splitParts(name)
	if len(parts) == 1 {
		return "", StripBackticks(parts[0])
	}

	return StripBackticks(parts[0]), StripBackticks(strings.Join(parts[1:], "."))
}

// isBackticked checks if s is a single identifier wrapped in backticks. Doubled
// backticks inside the quotes are escapes.
func isBackticked(s string) bool {
	if len(s) < 2 || s[0] != '`' || s[len(s)-1] != '`' {
		return false
	}

	return !strings.Contains(strings.ReplaceAll(s[1:len(s)-1], "``", ""), "`")
}

// StripBackticks removes every backtick from s.
func StripBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "")
}

// splitParts splits name on dots that are not inside a backticked part.
func splitParts(name string) []string {
	var (
		parts  []string
		quoted bool
		start  int
	)

	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '`':
			quoted = !quoted
		case '.':
			if !quoted {
				parts = append(parts, name[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, name[start:])
}
