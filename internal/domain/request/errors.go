package request

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("request not found")
	ErrStateConflict = errors.New("request is in a terminal state")
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects per-field issues from creation and close-time
// validation so handlers can render them inline.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validationError(issues ...FieldIssue) error {
	return &ValidationError{Issues: issues}
}
