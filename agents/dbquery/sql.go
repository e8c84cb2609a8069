package dbquery

import (
	"regexp"
	"strings"
)

var (
	sqlFence     = regexp.MustCompile("(?is)```sql\\s*(.*?)\\s*```")
	genericFence = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	selectStmt   = regexp.MustCompile(`(?is)(SELECT\b.*?;)`)
	forbidden    = regexp.MustCompile(`(?i)\b(DROP|DELETE|INSERT|UPDATE|ALTER|CREATE|TRUNCATE|EXEC|EXECUTE|ATTACH|DETACH|PRAGMA|GRANT|REVOKE)\b`)
)

// ExtractSQL pulls a statement out of a completion. It tries a sql fence,
// a generic fence, an inline SELECT terminated by a semicolon and finally
// the whole text when it starts with SELECT. Returns "" when nothing matches.
func ExtractSQL(txt string) string {
	if m := sqlFence.FindStringSubmatch(txt); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := genericFence.FindStringSubmatch(txt); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := selectStmt.FindStringSubmatch(txt); m != nil {
		return strings.TrimSpace(m[1])
	}
	stmt := strings.TrimRight(strings.TrimSpace(txt), ";") + ";"
	if strings.HasPrefix(strings.ToUpper(stmt), "SELECT") {
		return stmt
	}
	return ""
}

// IsReadOnly accepts a single SELECT (or WITH ... SELECT) statement only
func IsReadOnly(stmt string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(stmt))
	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return false
	}
	if forbidden.MatchString(normalized) {
		return false
	}
	// a second statement after the terminating semicolon
	if idx := strings.Index(normalized, ";"); idx >= 0 && strings.TrimSpace(normalized[idx+1:]) != "" {
		return false
	}
	return true
}
