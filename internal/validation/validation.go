package validation

import (
	"fmt"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
	ErrNoIDs       = fmt.Errorf("at least one ID is required")
)

// ValidateUUID checks that a string parses as a UUID.
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateUUIDs checks a non-empty list of UUIDs, failing on the first
// bad entry. Used for the lot IDs of a specific-identification sale.
func ValidateUUIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrNoIDs
	}
	for _, id := range ids {
		if err := ValidateUUID(id); err != nil {
			return err
		}
	}
	return nil
}
