package validation

import "github.com/artpar/shipit/internal/core/deployment"

// =============================================================================
// Convert Request Validation
// =============================================================================

// ValidateConvertFields validates the optional mode and order of a convert
// request. Empty values are valid and select the server defaults.
func ValidateConvertFields(mode, order string) (field, message string) {
	if mode != "" {
		if _, err := deployment.ParseMode(mode); err != nil {
			return "mode", err.Error()
		}
	}
	if order != "" {
		if _, err := deployment.ParseOrder(order); err != nil {
			return "order", err.Error()
		}
	}
	return "", ""
}

// ResolveConvertFields returns the mode and order for a request, falling back
// to the given defaults for empty values. The fields must have passed
// ValidateConvertFields.
func ResolveConvertFields(mode, order string, defaultMode deployment.Mode, defaultOrder deployment.Order) (deployment.Mode, deployment.Order) {
	m, o := defaultMode, defaultOrder
	if mode != "" {
		m = deployment.Mode(mode)
	}
	if order != "" {
		o = deployment.Order(order)
	}
	return m, o
}
