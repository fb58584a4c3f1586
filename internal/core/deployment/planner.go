package deployment

import (
	"log/slog"
	"maps"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/artpar/shipit/internal/core/compose"
)

// =============================================================================
// Template Assembly
// =============================================================================

// AssembleTemplateParams contains all inputs for assembling one template.
type AssembleTemplateParams struct {
	ProjectName string
	ServiceName string
	Service     compose.Service
	Mode        Mode
	Logger      *slog.Logger
}

// ResolvePodState returns the desired pod state, defaulting to present.
func ResolvePodState(pod PodOverrides) string {
	if pod.State == "" {
		return StatePresent
	}
	return pod.State
}

// AssembleTemplate converts one service into its template.
//
// This is a pure function that builds the container plan and wraps it for the
// requested mode:
//   - ModeConfig: a *DeploymentConfig with one replica unless
//     options.openshift.replicas says otherwise; a nil Template when the pod
//     state is absent
//   - ModeTask: a *TaskParameters with the pod overrides merged in; the
//     absent state does not suppress the task
//
// Example:
//
//	tmpl, err := AssembleTemplate(AssembleTemplateParams{
//	    ProjectName: "demo",
//	    ServiceName: "web",
//	    Service:     svc,
//	    Mode:        ModeConfig,
//	})
//	dc := tmpl.(*DeploymentConfig)
func AssembleTemplate(params AssembleTemplateParams) (Template, error) {
	if _, err := ParseMode(string(params.Mode)); err != nil {
		return nil, err
	}

	plan, err := BuildContainerPlan(BuildContainerPlanParams{
		ServiceName: params.ServiceName,
		Service:     params.Service,
		Mode:        params.Mode,
		Logger:      params.Logger,
	})
	if err != nil {
		return nil, err
	}

	labels := Labels(params.ProjectName, params.ServiceName)

	if params.Mode == ModeTask {
		return &TaskParameters{
			ProjectName:    params.ProjectName,
			DeploymentName: params.ServiceName,
			Labels:         labels,
			Containers:     []Container{plan.Container},
			Replace:        true,
			Volumes:        plan.Volumes,
			Replicas:       plan.Pod.Replicas,
			State:          plan.Pod.State,
		}, nil
	}

	if ResolvePodState(plan.Pod) == StateAbsent {
		loggerOrDefault(params.Logger).Debug("service state is absent, skipping",
			"project", params.ProjectName,
			"service", params.ServiceName,
		)
		return nil, nil
	}

	dc := &DeploymentConfig{
		TypeMeta: metav1.TypeMeta{
			APIVersion: DeploymentConfigAPIVersion,
			Kind:       DeploymentConfigKind,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:   params.ServiceName,
			Labels: maps.Clone(labels),
		},
		Spec: DeploymentConfigSpec{
			Template: PodTemplate{
				ObjectMeta: metav1.ObjectMeta{Labels: maps.Clone(labels)},
				Spec: PodSpec{
					Containers: []Container{plan.Container},
				},
			},
			Replicas: ptr.Deref(plan.Pod.Replicas, 1),
			Selector: map[string]string{},
			Strategy: DeploymentStrategy{Type: StrategyRolling},
		},
	}
	if len(plan.Volumes) > 0 {
		dc.Spec.Template.Spec.Volumes = plan.Volumes
	}

	return dc, nil
}
