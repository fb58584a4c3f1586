package deployment

import (
	"fmt"
	"sort"

	"github.com/artpar/shipit/internal/core/compose"
)

// =============================================================================
// Service Ordering Functions
// =============================================================================

// Order selects the order in which a project's services are converted.
type Order string

const (
	// OrderDeclared keeps the document order of the services.
	OrderDeclared Order = "declared"
	// OrderDependencies puts every service after the services it depends on.
	OrderDependencies Order = "dependencies"
)

// ParseOrder validates an order name. The empty string selects OrderDeclared.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "":
		return OrderDeclared, nil
	case OrderDeclared, OrderDependencies:
		return Order(s), nil
	default:
		return "", fmt.Errorf("unknown service order %q (expected %q or %q)", s, OrderDeclared, OrderDependencies)
	}
}

// DependsOn returns the service names listed in a service's depends_on
// directive, in either the list or the mapping form.
func DependsOn(svc compose.Service) []string {
	d, ok := svc.LookupDirective("depends_on")
	if !ok {
		return nil
	}
	switch v := d.Value.(type) {
	case []any:
		deps := make([]string, 0, len(v))
		for _, item := range v {
			if name, ok := item.(string); ok {
				deps = append(deps, name)
			}
		}
		return deps
	case map[string]any:
		if len(d.KeyOrder) == len(v) {
			return d.KeyOrder
		}
		deps := make([]string, 0, len(v))
		for name := range v {
			deps = append(deps, name)
		}
		sort.Strings(deps)
		return deps
	default:
		return nil
	}
}

// TopologicalSort sorts services by their dependencies using Kahn's algorithm.
// Services with no dependencies come first; ties keep document order.
//
// The function implements a BFS-based topological sort:
//  1. Build a map of service dependencies (in-degree), ignoring unknown services
//  2. Start with services that have no dependencies (in-degree = 0)
//  3. Process each service, reducing the in-degree of its dependents
//  4. When a dependent's in-degree reaches 0, add it to the queue
//
// If a cycle exists, remaining services are appended in document order.
//
// Example:
//
//	// Services: web → api → db
//	sorted := TopologicalSort(services)
//	// Result: [db, api, web]
func TopologicalSort(services []compose.Service) []compose.Service {
	if len(services) == 0 {
		return services
	}

	index := make(map[string]int, len(services))
	for i, svc := range services {
		index[svc.Name] = i
	}

	inDegree := make([]int, len(services))
	dependents := make([][]int, len(services))
	for i, svc := range services {
		seen := make(map[string]bool)
		for _, dep := range DependsOn(svc) {
			j, ok := index[dep]
			if !ok || seen[dep] || j == i {
				continue
			}
			seen[dep] = true
			inDegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// Start with services that have no dependencies
	var queue []int
	for i := range services {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	// Process queue (BFS)
	done := make([]bool, len(services))
	result := make([]compose.Service, 0, len(services))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		result = append(result, services[i])
		done[i] = true

		// Reduce in-degree for dependents, keeping document order
		next := dependents[i]
		sort.Ints(next)
		for _, j := range next {
			inDegree[j]--
			if inDegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	// Services caught in a cycle keep their document order
	for i, svc := range services {
		if !done[i] {
			result = append(result, svc)
		}
	}

	return result
}
