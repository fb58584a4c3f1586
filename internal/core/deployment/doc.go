// Package deployment provides pure functions for turning container.yml
// services into OpenShift deployment templates.
//
// This package contains the functional core logic for the conversion. All
// functions are pure (no I/O, no side effects other than debug logging) and
// return values that the imperative shell serialises or submits.
//
// # Functions
//
//   - Capabilities: Translate Docker capability names (MapCapability)
//   - Environment: Normalise environment shapes (ExpandEnvironment, ProjectEnvironment)
//   - Ports: Resolve and deduplicate container ports (ResolvePorts, ProjectPorts)
//   - Volumes: Build volumes and mounts from volume strings (ParseVolumeSpec, ResolveVolumes)
//   - Container: Dispatch service directives into a container (BuildContainerPlan)
//   - Planner: Wrap a container into a DeploymentConfig or task (AssembleTemplate)
//   - Walker: Convert every service of a project (WalkProject, WalkProjectConcurrent)
//
// # Usage
//
// The CLI and HTTP shell parse a project with the compose package and hand it
// to the walker:
//
//	project, err := compose.ParseProject(content, compose.ParseOptions{ProjectName: "demo"})
//	templates, err := deployment.WalkProject(*project, deployment.WalkOptions{Mode: deployment.ModeConfig})
//	for _, tmpl := range templates {
//	    switch t := tmpl.(type) {
//	    case *deployment.DeploymentConfig:
//	        // declarative resource
//	    case *deployment.TaskParameters:
//	        // imperative task parameters
//	    }
//	}
package deployment
