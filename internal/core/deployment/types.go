package deployment

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/artpar/shipit/internal/core/compose"
	corev1 "k8s.io/api/core/v1"
)

// =============================================================================
// Output Mode
// =============================================================================

// Mode selects the output shape of a conversion.
type Mode string

const (
	// ModeConfig produces declarative DeploymentConfig resources.
	ModeConfig Mode = "config"
	// ModeTask produces parameters for an imperative deployment task.
	ModeTask Mode = "task"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeConfig, ModeTask:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidMode, s, ModeConfig, ModeTask)
	}
}

// =============================================================================
// Container Types
// =============================================================================

// Container is the container spec built from one service.
//
// Ports and Env hold the canonical values; MarshalJSON shapes them for Mode.
// A nil Ports or Env means the service had no such directive, an empty one
// means the directive was present but yielded nothing.
type Container struct {
	Name            string
	SecurityContext *corev1.SecurityContext
	Ports           []int32
	Env             []EnvVar
	VolumeMounts    []corev1.VolumeMount
	Command         []string
	Args            []string
	WorkingDir      string
	Stdin           *bool

	// Passthrough holds directives without a dedicated mapping, copied
	// verbatim under their original key.
	Passthrough map[string]any

	Mode Mode
}

// MarshalJSON renders the container in the shape of its Mode. Passthrough
// keys never replace the mapped fields.
func (c Container) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Passthrough)+9)
	for k, v := range c.Passthrough {
		out[k] = v
	}

	out["name"] = c.Name
	if c.SecurityContext != nil {
		out["securityContext"] = c.SecurityContext
	} else {
		out["securityContext"] = map[string]any{}
	}
	if c.Ports != nil {
		out["ports"] = ProjectPorts(c.Mode, c.Ports)
	}
	if c.Env != nil {
		out["env"] = ProjectEnvironment(c.Mode, c.Env)
	}
	if len(c.VolumeMounts) > 0 {
		out["volumeMounts"] = c.VolumeMounts
	}
	if c.Command != nil {
		out["command"] = c.Command
	}
	if c.Args != nil {
		out["args"] = c.Args
	}
	if c.WorkingDir != "" {
		out["workingDir"] = c.WorkingDir
	}
	if c.Stdin != nil {
		out["stdin"] = *c.Stdin
	}

	return json.Marshal(out)
}

// EnvVar is one canonical environment entry. Value is nil for list entries
// written without "=".
type EnvVar struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

// =============================================================================
// Pod Overrides
// =============================================================================

// Pod states understood by the options.openshift.state key.
const (
	StatePresent = "present"
	StateAbsent  = "absent"
)

// PodOverrides holds pod-level settings promoted from options.openshift.
type PodOverrides struct {
	Replicas *int32
	State    string
}

// =============================================================================
// Builder Types
// =============================================================================

// BuildContainerPlanParams contains all inputs for building a container plan.
type BuildContainerPlanParams struct {
	ServiceName string
	Service     compose.Service
	Mode        Mode
	Logger      *slog.Logger
}

// ContainerPlan is the container/volumes/pod triple built from one service.
type ContainerPlan struct {
	Container Container
	Volumes   []corev1.Volume
	Pod       PodOverrides
}

// =============================================================================
// Labels
// =============================================================================

// Label keys attached to every template and pod template.
const (
	LabelApp     = "app"
	LabelService = "service"
)

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
