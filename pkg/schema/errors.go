package schema

import (
	"fmt"
	"strings"
)

// Issue is a single template validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Issues represents multiple validation failures.
type Issues []Issue

func (is Issues) Error() string {
	if len(is) == 1 {
		return is[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(is))
	for i, issue := range is {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, issue)
	}
	return b.String()
}

// Err returns the issues as an error, or nil when there are none.
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	return is
}

// IssuesOf returns the issues carried by err, if any.
func IssuesOf(err error) Issues {
	if is, ok := err.(Issues); ok {
		return is
	}
	return nil
}

func (is *Issues) add(path, format string, args ...any) {
	*is = append(*is, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}
