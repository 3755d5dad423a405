package logging

import (
	"regexp"
)

const (
	// MaxQuestionLogLength is the maximum length of question text to log.
	MaxQuestionLogLength = 120
	// MaxSQLLogLength is the maximum length of SQL text to log.
	MaxSQLLogLength = 200
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
)

var (
	// Matches password values in connection strings: password=xxx, pwd=xxx, pass=xxx.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches API keys in key=value form.
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// Matches connection string credentials in user:pass@host form.
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)
)

// SanitizeConnectionString removes credentials from connection strings.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError sanitizes error messages that might contain credentials.
// Use this before logging errors from database or AI endpoint operations.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// TruncateQuestion shortens question text for logging. Question text can
// contain anything the merchant typed, so logs only ever carry a prefix.
func TruncateQuestion(question string) string {
	return truncate(question, MaxQuestionLogLength)
}

// TruncateSQL shortens SQL text for logging.
func TruncateSQL(sql string) string {
	return truncate(sql, MaxSQLLogLength)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
