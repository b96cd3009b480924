package validation

import (
	"strings"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/request"
)

// ValidateSaveIbkrConfig validates a flex query credential update.
func ValidateSaveIbkrConfig(req request.SaveIbkrConfigRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.FlexToken) == "" {
		errors["flexToken"] = "flexToken must be set"
	}

	if req.FlexQueryID <= 0 {
		errors["flexQueryId"] = "flexQueryId must be a positive number"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
