// Package greeting builds the greeting returned for a path segment.
package greeting

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Prefix precedes every greeted name.
const Prefix = "Hello "

// ErrSeparator reports a segment that decodes to more than one path segment.
var ErrSeparator = errors.New("path segment contains a separator")

// Greet returns Prefix followed by name, unmodified.
func Greet(name string) string {
	return Prefix + name
}

// Segment converts a routed path segment into the name to greet. When the
// router matched on the escaped path, raw is still percent-encoded and is
// decoded here. A name that decodes to contain "/" (sent as "%2F") is not a
// single segment and yields ErrSeparator.
func Segment(raw string, escaped bool) (string, error) {
	if !escaped {
		return raw, nil
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode path segment %q: %w", raw, err)
	}
	if strings.Contains(name, "/") {
		return "", fmt.Errorf("decode path segment %q: %w", raw, ErrSeparator)
	}
	return name, nil
}
