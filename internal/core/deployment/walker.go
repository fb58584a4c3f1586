package deployment

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/artpar/shipit/internal/core/compose"
)

// =============================================================================
// Project Walking
// =============================================================================

// WalkOptions controls how a project is converted.
type WalkOptions struct {
	Mode  Mode
	Order Order

	// MaxConcurrent bounds WalkProjectConcurrent. Zero or less means one
	// goroutine per service.
	MaxConcurrent int

	Logger *slog.Logger
}

// WalkProject converts every service of a project and returns the non-empty
// templates in project order. The walk stops at the first error and returns
// no partial results.
//
// Example:
//
//	templates, err := WalkProject(project, WalkOptions{Mode: ModeConfig})
func WalkProject(project compose.Project, opts WalkOptions) ([]Template, error) {
	services := orderedServices(project, opts.Order)

	templates := make([]Template, 0, len(services))
	for _, svc := range services {
		tmpl, err := convertService(project.Name, svc, opts)
		if err != nil {
			return nil, err
		}
		if tmpl != nil {
			templates = append(templates, tmpl)
		}
	}
	return templates, nil
}

// WalkProjectConcurrent is WalkProject with services converted in parallel.
// Results keep the order WalkProject would produce. The first error cancels
// the remaining conversions.
func WalkProjectConcurrent(ctx context.Context, project compose.Project, opts WalkOptions) ([]Template, error) {
	services := orderedServices(project, opts.Order)
	results := make([]Template, len(services))

	g, ctx := errgroup.WithContext(ctx)
	if opts.MaxConcurrent > 0 {
		g.SetLimit(opts.MaxConcurrent)
	}

	for i, svc := range services {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tmpl, err := convertService(project.Name, svc, opts)
			if err != nil {
				return err
			}
			results[i] = tmpl
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	templates := make([]Template, 0, len(results))
	for _, tmpl := range results {
		if tmpl != nil {
			templates = append(templates, tmpl)
		}
	}
	return templates, nil
}

func convertService(projectName string, svc compose.Service, opts WalkOptions) (Template, error) {
	loggerOrDefault(opts.Logger).Debug("converting service",
		"project", projectName,
		"service", svc.Name,
		"mode", opts.Mode,
	)
	return AssembleTemplate(AssembleTemplateParams{
		ProjectName: projectName,
		ServiceName: svc.Name,
		Service:     svc,
		Mode:        opts.Mode,
		Logger:      opts.Logger,
	})
}

func orderedServices(project compose.Project, order Order) []compose.Service {
	if order == OrderDependencies {
		return TopologicalSort(project.Services)
	}
	return project.Services
}
