package deployment

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrUnknownCapability is matched by every *UnknownCapabilityError.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrMissingPersistentVolumeClaim is matched by every *MissingPersistentVolumeClaimError.
	ErrMissingPersistentVolumeClaim = errors.New("missing persistent volume claim")

	// ErrInvalidDirective is matched by every *DirectiveError.
	ErrInvalidDirective = errors.New("invalid directive")

	// ErrInvalidMode is returned for an output mode other than config or task.
	ErrInvalidMode = errors.New("invalid output mode")
)

// UnknownCapabilityError reports a cap_add / cap_drop entry that has no
// entry in the capability table.
type UnknownCapabilityError struct {
	Capability string
	Service    string
}

func (e *UnknownCapabilityError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("unknown capability %q", e.Capability)
	}
	return fmt.Sprintf("service %s: unknown capability %q", e.Service, e.Capability)
}

func (e *UnknownCapabilityError) Unwrap() error {
	return ErrUnknownCapability
}

// MissingPersistentVolumeClaimError reports a named volume without a matching
// options.openshift.persistent_volume_claims entry.
type MissingPersistentVolumeClaimError struct {
	Volume  string
	Service string
}

func (e *MissingPersistentVolumeClaimError) Error() string {
	return fmt.Sprintf(
		"service %s: options.openshift.persistent_volume_claims not found for volume %s",
		e.Service, e.Volume,
	)
}

func (e *MissingPersistentVolumeClaimError) Unwrap() error {
	return ErrMissingPersistentVolumeClaim
}

// DirectiveError reports a directive whose value has the wrong shape.
type DirectiveError struct {
	Service   string
	Directive string
	Message   string
	Err       error
}

func (e *DirectiveError) Error() string {
	msg := fmt.Sprintf("service %s: %s: %s", e.Service, e.Directive, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes every DirectiveError match ErrInvalidDirective while Unwrap still
// exposes the underlying cause.
func (e *DirectiveError) Is(target error) bool {
	return target == ErrInvalidDirective
}

func (e *DirectiveError) Unwrap() error {
	return e.Err
}

// NewDirectiveError creates a new DirectiveError.
func NewDirectiveError(service, directive, message string, err error) *DirectiveError {
	return &DirectiveError{
		Service:   service,
		Directive: directive,
		Message:   message,
		Err:       err,
	}
}
