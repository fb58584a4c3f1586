// Package validation provides pure validation functions for API handlers.
//
// Functions return the offending field and a message, or empty strings when
// the input is valid. They perform no I/O.
//
//	if field, msg := validation.ValidateConvertFields(mode, order); field != "" {
//	    // Return 400 Bad Request with msg
//	}
package validation
