package spotify

import (
	"fmt"
	"strings"

	"github.com/desertthunder/spotimine/internal/shared"
)

const uriPrefix = "spotify:"

// URI identifies a catalog object as spotify:<type>:<id>.
type URI string

// NewURI builds the URI of an object of the given kind.
func NewURI(kind ContentType, id string) URI {
	return URI(uriPrefix + kind.String() + ":" + id)
}

// ParseURI accepts "spotify:type:id" or "type:id".
func ParseURI(s string) (URI, error) {
	rest := strings.TrimPrefix(s, uriPrefix)
	parts := strings.Split(rest, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: malformed uri %q", shared.ErrInvalidInput, s)
	}
	return URI(uriPrefix + rest), nil
}

// Type is the object type segment, e.g. "track".
func (u URI) Type() string {
	parts := strings.Split(strings.TrimPrefix(string(u), uriPrefix), ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// ID is the final segment.
func (u URI) ID() string {
	s := string(u)
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (u URI) String() string {
	return string(u)
}
