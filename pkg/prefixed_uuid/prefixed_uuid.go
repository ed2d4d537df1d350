// Package prefixed_uuid generates identifiers of the form "prefix-uuid".
//
// They name the throwaway agent sessions created for each query so that
// sessions and log lines can be matched back to the interface that opened them.
package prefixed_uuid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PrefixedUUID is a UUID tagged with a short prefix.
type PrefixedUUID struct {
	Prefix string
	UUID   uuid.UUID
}

// New creates a PrefixedUUID with a random UUID.
func New(prefix string) PrefixedUUID {
	return PrefixedUUID{Prefix: prefix, UUID: uuid.New()}
}

// FromString parses "prefix-uuid". The prefix must not contain '-'.
func FromString(s string) (PrefixedUUID, error) {
	prefix, rest, ok := strings.Cut(s, "-")
	if !ok || prefix == "" {
		return PrefixedUUID{}, fmt.Errorf("invalid prefixed UUID format: %s", s)
	}

	id, err := uuid.Parse(rest)
	if err != nil {
		return PrefixedUUID{}, fmt.Errorf("invalid UUID: %w", err)
	}
	return PrefixedUUID{Prefix: prefix, UUID: id}, nil
}

func (p PrefixedUUID) String() string {
	return p.Prefix + "-" + p.UUID.String()
}

// IsZero reports whether p is uninitialised.
func (p PrefixedUUID) IsZero() bool {
	return p.Prefix == "" && p.UUID == uuid.Nil
}

// HasPrefix reports whether s is a valid prefixed UUID carrying prefix.
func HasPrefix(s, prefix string) bool {
	p, err := FromString(s)
	return err == nil && p.Prefix == prefix
}
