package cache

import (
	"strconv"
	"strings"
)

// Key identifies a cached read: an entity kind followed by the parameters
// that shaped the query, in a fixed order.
type Key struct {
	parts []string
}

func NewKey(kind string, params ...string) Key {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, kind)
	parts = append(parts, params...)
	return Key{parts: parts}
}

func (k Key) Kind() string {
	if len(k.parts) == 0 {
		return ""
	}
	return k.parts[0]
}

// Matches reports whether pattern is a prefix of k.
func (k Key) Matches(pattern Key) bool {
	if len(pattern.parts) == 0 || len(pattern.parts) > len(k.parts) {
		return false
	}
	for i, p := range pattern.parts {
		if k.parts[i] != p {
			return false
		}
	}
	return true
}

func (k Key) id() string {
	quoted := make([]string, len(k.parts))
	for i, p := range k.parts {
		quoted[i] = strconv.Quote(p)
	}
	return strings.Join(quoted, ",")
}

func (k Key) String() string {
	return strings.Join(k.parts, "/")
}
