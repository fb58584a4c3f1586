package deployment

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// =============================================================================
// Volume Spec Parsing
// =============================================================================

// volumePermissions are the tokens accepted after the destination of a
// Docker volume string.
var volumePermissions = []string{"rw", "ro", "z", "Z"}

// VolumeSpec is a Docker volume string split into its parts.
type VolumeSpec struct {
	Source      string
	Destination string
	Permissions string
}

// ReadOnly reports whether the spec mounts read-only.
func (s VolumeSpec) ReadOnly() bool {
	return s.Permissions == "ro"
}

// ParseVolumeSpec splits a Docker volume string on ":".
//
// Shapes:
//   - "src:dst:perm" - source, destination and permissions
//   - "dst:perm"     - when perm is one of rw, ro, z, Z
//   - "src:dst"      - otherwise
//   - "dst"          - destination only
//
// Example:
//
//	ParseVolumeSpec("data:/var/lib/data:ro")
//	// Returns: VolumeSpec{Source: "data", Destination: "/var/lib/data", Permissions: "ro"}
func ParseVolumeSpec(raw string) (VolumeSpec, error) {
	parts := strings.Split(raw, ":")
	switch len(parts) {
	case 1:
		return VolumeSpec{Destination: parts[0]}, nil
	case 2:
		if slices.Contains(volumePermissions, parts[1]) {
			return VolumeSpec{Destination: parts[0], Permissions: parts[1]}, nil
		}
		return VolumeSpec{Source: parts[0], Destination: parts[1]}, nil
	case 3:
		return VolumeSpec{Source: parts[0], Destination: parts[1], Permissions: parts[2]}, nil
	default:
		return VolumeSpec{}, fmt.Errorf("volume %q has too many parts", raw)
	}
}

// =============================================================================
// Volume Resolution
// =============================================================================

// VolumeKind classifies a volume spec by its source.
type VolumeKind int

const (
	// VolumeEmptyDir has no source.
	VolumeEmptyDir VolumeKind = iota
	// VolumeHostPath has a source starting with ~, . or /.
	VolumeHostPath
	// VolumeClaim has a named-volume source backed by a claim.
	VolumeClaim
	// VolumeFromEnv has a source starting with $ and is not converted.
	VolumeFromEnv
)

// Kind classifies the spec by its source.
func (s VolumeSpec) Kind() VolumeKind {
	switch {
	case s.Source == "":
		return VolumeEmptyDir
	case strings.HasPrefix(s.Source, "$"):
		return VolumeFromEnv
	case strings.ContainsAny(s.Source[:1], "~./"):
		return VolumeHostPath
	default:
		return VolumeClaim
	}
}

// ResolveVolumesParams contains all inputs for ResolveVolumes.
type ResolveVolumesParams struct {
	ServiceName string
	Entries     []any
	Options     OpenShiftOptions
	Logger      *slog.Logger
}

// ResolveVolumes converts Docker volume strings into volumes and mounts.
//
// The function:
//   - Skips sources starting with "$" (environment-sourced volumes)
//   - Emits a hostPath volume for sources starting with ~, . or /
//   - Emits a persistentVolumeClaim volume named after the source for other
//     sources, failing with *MissingPersistentVolumeClaimError without a claim
//   - Emits an emptyDir volume when there is no source
//
// Every converted entry yields one mount. A volume whose name is already in
// the result is not added twice; its mount still is.
func ResolveVolumes(params ResolveVolumesParams) ([]corev1.Volume, []corev1.VolumeMount, error) {
	logger := loggerOrDefault(params.Logger)

	var volumes []corev1.Volume
	var mounts []corev1.VolumeMount

	for _, entry := range params.Entries {
		raw, ok := entry.(string)
		if !ok {
			return nil, nil, fmt.Errorf("volume entry %v must be a string", entry)
		}
		spec, err := ParseVolumeSpec(raw)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("volume",
			"service", params.ServiceName,
			"source", spec.Source,
			"destination", spec.Destination,
			"permissions", spec.Permissions,
		)

		var volume corev1.Volume
		switch spec.Kind() {
		case VolumeFromEnv:
			logger.Warn("skipping volume sourced from an environment variable",
				"service", params.ServiceName,
				"volume", raw,
			)
			continue
		case VolumeHostPath:
			volume = corev1.Volume{
				Name: VolumeNameFromDestination(spec.Destination),
				VolumeSource: corev1.VolumeSource{
					HostPath: &corev1.HostPathVolumeSource{Path: spec.Source},
				},
			}
		case VolumeClaim:
			claimName, ok := params.Options.ClaimFor(spec.Source)
			if !ok {
				return nil, nil, &MissingPersistentVolumeClaimError{
					Volume:  spec.Source,
					Service: params.ServiceName,
				}
			}
			volume = corev1.Volume{
				Name: spec.Source,
				VolumeSource: corev1.VolumeSource{
					PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: claimName},
				},
			}
		default:
			volume = corev1.Volume{
				Name: VolumeNameFromDestination(spec.Destination),
				VolumeSource: corev1.VolumeSource{
					EmptyDir: &corev1.EmptyDirVolumeSource{Medium: corev1.StorageMediumDefault},
				},
			}
		}

		if !slices.ContainsFunc(volumes, func(v corev1.Volume) bool { return v.Name == volume.Name }) {
			volumes = append(volumes, volume)
		}
		mounts = append(mounts, corev1.VolumeMount{
			Name:      volume.Name,
			MountPath: spec.Destination,
			ReadOnly:  spec.ReadOnly(),
		})
	}

	return volumes, mounts, nil
}
