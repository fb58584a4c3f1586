package deployment

import "strings"

// =============================================================================
// Resource Naming Functions
// =============================================================================

// VolumeNameFromDestination derives a volume name from a mount destination.
// Every "/" becomes "-", then the first "-" of the result is removed.
//
// Example:
//
//	VolumeNameFromDestination("/var/lib/data") // returns "var-lib-data"
//	VolumeNameFromDestination("data/app")      // returns "dataapp"
func VolumeNameFromDestination(destination string) string {
	name := strings.ReplaceAll(destination, "/", "-")
	return strings.Replace(name, "-", "", 1)
}

// Labels returns the labels attached to a service's template.
// Pattern: {app: projectName, service: serviceName}
//
// Example:
//
//	Labels("demo", "web") // returns map[app:demo service:web]
func Labels(projectName, serviceName string) map[string]string {
	return map[string]string{
		LabelApp:     projectName,
		LabelService: serviceName,
	}
}
