package deployment

import (
	"fmt"

	"github.com/artpar/shipit/internal/core/compose"
	"github.com/go-viper/mapstructure/v2"
	corev1 "k8s.io/api/core/v1"
)

// =============================================================================
// options.openshift Extension Block
// =============================================================================

// OpenShiftOptions is the decoded options.openshift block of a service.
// Unrecognised keys are ignored.
type OpenShiftOptions struct {
	SELinuxOptions         *corev1.SELinuxOptions `json:"seLinuxOptions"`
	RunAsNonRoot           *bool                  `json:"runAsNonRoot"`
	RunAsUser              *int64                 `json:"runAsUser"`
	Replicas               *int32                 `json:"replicas"`
	State                  string                 `json:"state"`
	PersistentVolumeClaims []ClaimDeclaration     `json:"persistent_volume_claims"`
}

// ClaimDeclaration binds a named volume to a persistent volume claim.
type ClaimDeclaration struct {
	VolumeName string `json:"volume_name"`
	ClaimName  string `json:"claim_name"`
}

// ClaimFor returns the claim name declared for a named volume.
func (o OpenShiftOptions) ClaimFor(volumeName string) (string, bool) {
	for _, claim := range o.PersistentVolumeClaims {
		if claim.VolumeName == volumeName {
			return claim.ClaimName, claim.ClaimName != ""
		}
	}
	return "", false
}

// DecodeOpenShiftOptions reads options.openshift from a service definition.
// A service without the block yields zero options.
func DecodeOpenShiftOptions(svc compose.Service) (OpenShiftOptions, error) {
	var opts OpenShiftOptions

	raw, ok := svc.Lookup("options")
	if !ok || raw == nil {
		return opts, nil
	}
	options, ok := raw.(map[string]any)
	if !ok {
		return opts, NewDirectiveError(svc.Name, "options", "must be a mapping", nil)
	}
	block, ok := options["openshift"]
	if !ok || block == nil {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &opts,
	})
	if err != nil {
		return opts, fmt.Errorf("creating options decoder: %w", err)
	}
	if err := decoder.Decode(block); err != nil {
		return OpenShiftOptions{}, NewDirectiveError(svc.Name, "options.openshift", "cannot decode", err)
	}

	switch opts.State {
	case "", StatePresent, StateAbsent:
	default:
		return OpenShiftOptions{}, NewDirectiveError(svc.Name, "options.openshift.state",
			fmt.Sprintf("must be %q or %q, got %q", StatePresent, StateAbsent, opts.State), nil)
	}

	return opts, nil
}
