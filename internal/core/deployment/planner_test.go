package deployment

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/artpar/shipit/internal/core/compose"
)

func openshift(block map[string]any) compose.Directive {
	return directive("options", map[string]any{"openshift": block})
}

func assemble(t *testing.T, svc compose.Service, mode Mode) Template {
	t.Helper()
	tmpl, err := AssembleTemplate(AssembleTemplateParams{
		ProjectName: "demo",
		ServiceName: svc.Name,
		Service:     svc,
		Mode:        mode,
	})
	require.NoError(t, err)
	return tmpl
}

// =============================================================================
// AssembleTemplate Tests - Config Mode
// =============================================================================

func TestAssembleTemplate_ConfigDefaults(t *testing.T) {
	tmpl := assemble(t, service("web", directive("image", "nginx")), ModeConfig)

	dc, ok := tmpl.(*DeploymentConfig)
	require.True(t, ok)
	assert.Equal(t, "web", dc.ServiceName())
	assert.Equal(t, DeploymentConfigAPIVersion, dc.APIVersion)
	assert.Equal(t, DeploymentConfigKind, dc.Kind)
	assert.Equal(t, "web", dc.Name)
	assert.Equal(t, map[string]string{"app": "demo", "service": "web"}, dc.Labels)
	assert.Equal(t, dc.Labels, dc.Spec.Template.Labels)
	assert.Equal(t, int32(1), dc.Spec.Replicas)
	assert.Empty(t, dc.Spec.Selector)
	assert.NotNil(t, dc.Spec.Selector)
	assert.Equal(t, StrategyRolling, dc.Spec.Strategy.Type)
	require.Len(t, dc.Spec.Template.Spec.Containers, 1)
	assert.Nil(t, dc.Spec.Template.Spec.Volumes)
}

func TestAssembleTemplate_ConfigReplicas(t *testing.T) {
	tmpl := assemble(t, service("web", openshift(map[string]any{"replicas": 3})), ModeConfig)

	dc := tmpl.(*DeploymentConfig)
	assert.Equal(t, int32(3), dc.Spec.Replicas)
}

func TestAssembleTemplate_ConfigAbsentIsSkipped(t *testing.T) {
	tmpl := assemble(t, service("web", openshift(map[string]any{"state": "absent"})), ModeConfig)
	assert.Nil(t, tmpl)
}

func TestAssembleTemplate_ConfigLabelsAreIndependent(t *testing.T) {
	dc := assemble(t, service("web"), ModeConfig).(*DeploymentConfig)
	dc.Labels["app"] = "changed"
	assert.Equal(t, "demo", dc.Spec.Template.Labels["app"])
}

func TestAssembleTemplate_ConfigJSON(t *testing.T) {
	tmpl := assemble(t, service("web",
		directive("image", "nginx"),
		directive("volumes", []any{"/srv"}),
	), ModeConfig)

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "v1", out["apiVersion"])
	assert.Equal(t, "DeploymentConfig", out["kind"])

	spec := out["spec"].(map[string]any)
	assert.Equal(t, float64(1), spec["replicas"])
	assert.Equal(t, map[string]any{}, spec["selector"])
	assert.Equal(t, map[string]any{"type": "Rolling"}, spec["strategy"])

	podSpec := spec["template"].(map[string]any)["spec"].(map[string]any)
	assert.Equal(t, []any{
		map[string]any{"name": "srv", "emptyDir": map[string]any{}},
	}, podSpec["volumes"])
}

// =============================================================================
// AssembleTemplate Tests - Task Mode
// =============================================================================

func TestAssembleTemplate_Task(t *testing.T) {
	tmpl := assemble(t, service("web",
		directive("image", "nginx"),
		openshift(map[string]any{"replicas": 2}),
	), ModeTask)

	task, ok := tmpl.(*TaskParameters)
	require.True(t, ok)
	assert.Equal(t, "web", task.ServiceName())
	assert.Equal(t, "demo", task.ProjectName)
	assert.Equal(t, "web", task.DeploymentName)
	assert.True(t, task.Replace)
	assert.Equal(t, ptr.To(int32(2)), task.Replicas)
	assert.Empty(t, task.State)
}

func TestAssembleTemplate_TaskAbsentIsKept(t *testing.T) {
	tmpl := assemble(t, service("web", openshift(map[string]any{"state": "absent"})), ModeTask)

	task, ok := tmpl.(*TaskParameters)
	require.True(t, ok)
	assert.Equal(t, StateAbsent, task.State)
}

func TestAssembleTemplate_TaskJSON(t *testing.T) {
	tmpl := assemble(t, service("web",
		directive("image", "nginx"),
		directive("environment", []any{"A=1"}),
		directive("ports", []any{"8080:80"}),
	), ModeTask)

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"oso_deployment": {
			"project_name": "demo",
			"deployment_name": "web",
			"labels": {"app": "demo", "service": "web"},
			"replace": true,
			"containers": [{
				"image": "nginx",
				"name": "web",
				"env": {"A": "1"},
				"ports": [80],
				"securityContext": {}
			}]
		}
	}`, string(data))
}

// =============================================================================
// AssembleTemplate Tests - Errors
// =============================================================================

func TestAssembleTemplate_InvalidMode(t *testing.T) {
	_, err := AssembleTemplate(AssembleTemplateParams{
		ProjectName: "demo",
		ServiceName: "web",
		Service:     service("web"),
		Mode:        Mode("yaml"),
	})
	assert.True(t, errors.Is(err, ErrInvalidMode))
}

func TestAssembleTemplate_InvalidState(t *testing.T) {
	_, err := AssembleTemplate(AssembleTemplateParams{
		ProjectName: "demo",
		ServiceName: "web",
		Service:     service("web", openshift(map[string]any{"state": "paused"})),
		Mode:        ModeConfig,
	})
	assert.True(t, errors.Is(err, ErrInvalidDirective))
}

// =============================================================================
// Mode Tests
// =============================================================================

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"config", ModeConfig, false},
		{"task", ModeTask, false},
		{"", "", true},
		{"Config", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePodState(t *testing.T) {
	assert.Equal(t, StatePresent, ResolvePodState(PodOverrides{}))
	assert.Equal(t, StateAbsent, ResolvePodState(PodOverrides{State: StateAbsent}))
}
