package enrich

import (
	"fmt"
	"strings"
)

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

// clientSafePatterns maps provider error fragments to messages that are
// safe to return to API callers.
var clientSafePatterns = []struct{ pattern, msg string }{
	{"rate limit", "rate limit exceeded"},
	{"status 429", "rate limit exceeded"},
	{"quota", "quota exceeded"},
	{"deadline exceeded", "request timed out"},
	{"timeout", "request timed out"},
	{"context canceled", "request cancelled"},
	{"invalid api", "authentication failed with provider"},
	{"api key", "authentication failed with provider"},
	{"unauthorized", "authentication failed with provider"},
	{"status 401", "authentication failed with provider"},
	{"forbidden", "access denied by provider"},
	{"status 403", "access denied by provider"},
}

// Sanitize converts a provider error into a client-safe message. The full
// error is expected to be logged by the caller.
func Sanitize(err error) string {
	if err == nil {
		return ""
	}
	low := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(low, p.pattern) {
			return p.msg
		}
	}
	return "provider temporarily unavailable"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
