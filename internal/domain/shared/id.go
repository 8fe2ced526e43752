package shared

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID is an opaque 128-bit identifier value object backed by a UUID string.
// Deals, messages, MESO rounds, vendors and requisitions all use this type.
type ID struct {
	value string
}

// NewID generates a fresh random ID
func NewID() ID {
	return ID{value: uuid.NewString()}
}

// ParseID validates and wraps an existing identifier string
func ParseID(s string) (ID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID{value: parsed.String()}, nil
}

// MustParseID wraps an identifier string, panicking if invalid.
// Use this only when the ID is known-good (e.g., from the database).
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical string form of the ID
func (id ID) String() string {
	return id.value
}

// Equals checks if two IDs are equal
func (id ID) Equals(other ID) bool {
	return id.value == other.value
}

// IsZero checks if the ID is the zero value (uninitialized)
func (id ID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON encodes the ID as its canonical string form
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON decodes an ID from its canonical string form.
// An empty string decodes to the zero ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*id = ID{}
		return nil
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
