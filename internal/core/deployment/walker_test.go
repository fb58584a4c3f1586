package deployment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/shipit/internal/core/compose"
)

func sampleProject() compose.Project {
	return compose.Project{
		Name: "demo",
		Services: []compose.Service{
			service("web",
				directive("image", "nginx"),
				directive("ports", []any{"8080:80"}),
				directive("depends_on", []any{"db"}),
			),
			service("worker",
				directive("image", "worker"),
				openshift(map[string]any{"state": "absent"}),
			),
			service("db",
				directive("image", "postgres"),
				directive("volumes", []any{"/var/lib/postgresql/data"}),
			),
		},
	}
}

func templateNames(templates []Template) []string {
	names := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		names = append(names, tmpl.ServiceName())
	}
	return names
}

// =============================================================================
// WalkProject Tests
// =============================================================================

func TestWalkProject_ConfigSkipsAbsent(t *testing.T) {
	templates, err := WalkProject(sampleProject(), WalkOptions{Mode: ModeConfig})
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "db"}, templateNames(templates))
}

func TestWalkProject_TaskKeepsAbsent(t *testing.T) {
	templates, err := WalkProject(sampleProject(), WalkOptions{Mode: ModeTask})
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "worker", "db"}, templateNames(templates))
}

func TestWalkProject_DependencyOrder(t *testing.T) {
	templates, err := WalkProject(sampleProject(), WalkOptions{
		Mode:  ModeConfig,
		Order: OrderDependencies,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "web"}, templateNames(templates))
}

func TestWalkProject_Empty(t *testing.T) {
	templates, err := WalkProject(compose.Project{Name: "demo"}, WalkOptions{Mode: ModeConfig})
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestWalkProject_FailsFast(t *testing.T) {
	project := sampleProject()
	project.Services = append(project.Services,
		service("broken", directive("cap_add", []any{"NOPE"})),
	)

	templates, err := WalkProject(project, WalkOptions{Mode: ModeConfig})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCapability))
	assert.Nil(t, templates)
}

func TestWalkProject_InvalidMode(t *testing.T) {
	_, err := WalkProject(sampleProject(), WalkOptions{Mode: "yaml"})
	assert.True(t, errors.Is(err, ErrInvalidMode))
}

// =============================================================================
// WalkProjectConcurrent Tests
// =============================================================================

func TestWalkProjectConcurrent_MatchesSequential(t *testing.T) {
	project := sampleProject()
	for i := range 20 {
		project.Services = append(project.Services, service(fmt.Sprintf("svc-%02d", i),
			directive("image", "busybox"),
			directive("environment", []any{fmt.Sprintf("INDEX=%d", i)}),
		))
	}

	for _, mode := range []Mode{ModeConfig, ModeTask} {
		for _, limit := range []int{0, 1, 4} {
			t.Run(fmt.Sprintf("%s/limit=%d", mode, limit), func(t *testing.T) {
				opts := WalkOptions{Mode: mode, MaxConcurrent: limit}

				sequential, err := WalkProject(project, opts)
				require.NoError(t, err)

				concurrent, err := WalkProjectConcurrent(context.Background(), project, opts)
				require.NoError(t, err)

				assert.Equal(t, sequential, concurrent)
			})
		}
	}
}

func TestWalkProjectConcurrent_Error(t *testing.T) {
	project := sampleProject()
	project.Services = append(project.Services,
		service("broken", directive("volumes", []any{"data:/data"})),
	)

	templates, err := WalkProjectConcurrent(context.Background(), project, WalkOptions{Mode: ModeConfig})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPersistentVolumeClaim))
	assert.Nil(t, templates)
}

func TestWalkProjectConcurrent_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WalkProjectConcurrent(ctx, sampleProject(), WalkOptions{Mode: ModeConfig})
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// Parsed Project Tests
// =============================================================================

func TestWalkProject_ParsedEnvironmentVolumesSkipped(t *testing.T) {
	content := `
name: demo
services:
  web:
    image: nginx
    volumes:
      - $HOME:/home/app
      - ${DATA}:/var/data
`
	lookups := map[string]func(string) (string, bool){
		"no lookup": nil,
		"environment": func(name string) (string, bool) {
			if name == "HOME" {
				return "/root", true
			}
			return "", false
		},
	}

	for name, lookup := range lookups {
		t.Run(name, func(t *testing.T) {
			project, err := compose.ParseProject(content, compose.ParseOptions{Lookup: lookup})
			require.NoError(t, err)

			templates, err := WalkProject(*project, WalkOptions{Mode: ModeConfig})
			require.NoError(t, err)
			require.Len(t, templates, 1)

			dc, ok := templates[0].(*DeploymentConfig)
			require.True(t, ok)
			assert.Empty(t, dc.Spec.Template.Spec.Volumes)
			require.Len(t, dc.Spec.Template.Spec.Containers, 1)
			assert.Empty(t, dc.Spec.Template.Spec.Containers[0].VolumeMounts)
		})
	}
}
