package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/artpar/shipit/internal/core/compose"
	"github.com/artpar/shipit/internal/core/deployment"
	"github.com/artpar/shipit/internal/shell/render"
)

// DefaultProjectFile is converted when no file argument is given.
const DefaultProjectFile = "container.yml"

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a container.yml project into deployment templates",
		Long: `Convert reads a container.yml project and prints one template per service.

In config mode each service becomes a DeploymentConfig resource. In task mode
each service becomes the parameters of an oso_deployment task. Services whose
options.openshift.state is absent are left out in config mode.

Variables in the document are resolved from the environment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.Flags())
			if err != nil {
				return err
			}

			path := DefaultProjectFile
			if len(args) == 1 {
				path = args[0]
			}

			return runConvert(cmd.Context(), convertParams{
				Path:        path,
				ProjectName: projectName,
				Config:      cfg.Convert,
				Output:      opts.stdout,
				Logger:      logger,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&projectName, "project", "", "Project name (default: the document's name, then the file's directory)")
	flags.String("mode", "", "Output mode: config or task")
	flags.String("format", "", "Output format: yaml or json")
	flags.String("order", "", "Service order: declared or dependencies")
	flags.String("output-dir", "", "Write one file per service into this directory instead of stdout")
	flags.Int("concurrency", 0, "Maximum number of services converted in parallel")

	return cmd
}

// convertParams contains all inputs for runConvert.
type convertParams struct {
	Path        string
	ProjectName string
	Config      ConvertConfig
	Output      io.Writer
	Logger      *slog.Logger
}

// runConvert parses, converts and renders one project file.
func runConvert(ctx context.Context, params convertParams) error {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	content, err := os.ReadFile(params.Path)
	if err != nil {
		return &CommandError{Op: "read project", Err: err, ExitCode: ExitParseError}
	}

	project, err := compose.ParseProject(string(content), compose.ParseOptions{
		ProjectName:        params.ProjectName,
		DefaultProjectName: directoryName(params.Path),
		Lookup:             os.LookupEnv,
		Logger:             logger,
	})
	if err != nil {
		return &CommandError{Op: "parse " + params.Path, Err: err, ExitCode: ExitParseError}
	}

	// Config was validated when it was loaded.
	mode, _ := deployment.ParseMode(params.Config.Mode)
	order, _ := deployment.ParseOrder(params.Config.Order)
	format, _ := render.ParseFormat(params.Config.Format)

	walkOpts := deployment.WalkOptions{
		Mode:          mode,
		Order:         order,
		MaxConcurrent: params.Config.Concurrency,
		Logger:        logger,
	}
	var templates []deployment.Template
	if params.Config.Concurrency > 1 {
		templates, err = deployment.WalkProjectConcurrent(ctx, *project, walkOpts)
	} else {
		templates, err = deployment.WalkProject(*project, walkOpts)
	}
	if err != nil {
		return &CommandError{Op: "convert " + project.Name, Err: err, ExitCode: ExitConversionError}
	}

	if params.Config.OutputDir != "" {
		paths, err := render.WriteFiles(params.Config.OutputDir, format, templates)
		if err != nil {
			return &CommandError{Op: "write templates", Err: err, ExitCode: ExitOutputError}
		}
		for _, p := range paths {
			logger.Info("wrote template", "path", p)
		}
	} else if err := render.NewWriter(format, params.Output).WriteTemplates(templates); err != nil {
		return &CommandError{Op: "write templates", Err: err, ExitCode: ExitOutputError}
	}

	logger.Debug("project converted",
		"project", project.Name,
		"mode", mode,
		"services", len(project.Services),
		"templates", len(templates),
	)
	return nil
}

// directoryName returns the base name of the directory holding path.
func directoryName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	name := filepath.Base(filepath.Dir(abs))
	if name == string(filepath.Separator) || name == "." {
		return ""
	}
	return name
}
