package deployment

import (
	"fmt"
	"math"
	"slices"

	"github.com/docker/go-connections/nat"
	corev1 "k8s.io/api/core/v1"
)

// =============================================================================
// Port Resolution Functions
// =============================================================================

// ResolvePorts appends the container-side ports of entries to existing,
// skipping ports that are already present. The first occurrence keeps its
// position.
//
// String entries are Docker port specs ("80", "8080:80",
// "127.0.0.1:8080:80/udp", "8000-8001:80-81"); integer entries are taken as
// the container port directly.
//
// Example:
//
//	ports, _ := ResolvePorts([]any{"8080:80", 80, "443"}, nil)
//	// Result: [80 443]
func ResolvePorts(entries []any, existing []int32) ([]int32, error) {
	ports := existing
	if ports == nil {
		ports = []int32{}
	}

	for _, entry := range entries {
		targets, err := containerPorts(entry)
		if err != nil {
			return nil, err
		}
		for _, port := range targets {
			if !slices.Contains(ports, port) {
				ports = append(ports, port)
			}
		}
	}
	return ports, nil
}

// containerPorts returns the container-side port numbers of one entry.
func containerPorts(entry any) ([]int32, error) {
	switch v := entry.(type) {
	case int:
		if v <= 0 || v > math.MaxUint16 {
			return nil, fmt.Errorf("port %d out of range", v)
		}
		return []int32{int32(v)}, nil
	case string:
		mappings, err := nat.ParsePortSpec(v)
		if err != nil {
			return nil, fmt.Errorf("port %q: %w", v, err)
		}
		ports := make([]int32, 0, len(mappings))
		for _, m := range mappings {
			ports = append(ports, int32(m.Port.Int()))
		}
		return ports, nil
	default:
		return nil, fmt.Errorf("port entry %v must be a string or an integer", entry)
	}
}

// ProjectPorts shapes port numbers for the output mode: ContainerPort
// records for ModeConfig, bare integers for ModeTask.
func ProjectPorts(mode Mode, ports []int32) any {
	if mode == ModeTask {
		if ports == nil {
			return []int32{}
		}
		return ports
	}
	out := make([]corev1.ContainerPort, 0, len(ports))
	for _, p := range ports {
		out = append(out, corev1.ContainerPort{ContainerPort: p})
	}
	return out
}
