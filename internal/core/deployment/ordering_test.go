package deployment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artpar/shipit/internal/core/compose"
)

// dependent builds a service whose depends_on directive lists deps.
func dependent(name string, deps ...string) compose.Service {
	if len(deps) == 0 {
		return compose.Service{Name: name}
	}
	list := make([]any, 0, len(deps))
	for _, d := range deps {
		list = append(list, d)
	}
	return service(name, directive("depends_on", list))
}

func sortedNames(services []compose.Service) []string {
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	return names
}

// =============================================================================
// ParseOrder Tests
// =============================================================================

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder("")
	assert.NoError(t, err)
	assert.Equal(t, OrderDeclared, order)

	order, err = ParseOrder("dependencies")
	assert.NoError(t, err)
	assert.Equal(t, OrderDependencies, order)

	_, err = ParseOrder("alphabetical")
	assert.Error(t, err)
}

// =============================================================================
// DependsOn Tests
// =============================================================================

func TestDependsOn_List(t *testing.T) {
	assert.Equal(t, []string{"db", "cache"}, DependsOn(dependent("web", "db", "cache")))
}

func TestDependsOn_MappingKeepsKeyOrder(t *testing.T) {
	svc := service("web", compose.Directive{
		Key: "depends_on",
		Value: map[string]any{
			"db":    map[string]any{"condition": "service_healthy"},
			"cache": nil,
		},
		KeyOrder: []string{"db", "cache"},
	})
	assert.Equal(t, []string{"db", "cache"}, DependsOn(svc))
}

func TestDependsOn_MappingWithoutOrder(t *testing.T) {
	svc := service("web", directive("depends_on", map[string]any{"db": nil, "cache": nil}))
	assert.Equal(t, []string{"cache", "db"}, DependsOn(svc))
}

func TestDependsOn_Missing(t *testing.T) {
	assert.Nil(t, DependsOn(service("web", directive("image", "nginx"))))
}

// =============================================================================
// TopologicalSort Tests
// =============================================================================

func TestTopologicalSort_Empty(t *testing.T) {
	services := []compose.Service{}
	result := TopologicalSort(services)
	assert.Empty(t, result)
}

func TestTopologicalSort_SingleService(t *testing.T) {
	result := TopologicalSort([]compose.Service{dependent("web")})
	assert.Equal(t, []string{"web"}, sortedNames(result))
}

func TestTopologicalSort_NoDependenciesKeepsDocumentOrder(t *testing.T) {
	services := []compose.Service{dependent("web"), dependent("api"), dependent("db")}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"web", "api", "db"}, sortedNames(result))
}

func TestTopologicalSort_LinearDependencies(t *testing.T) {
	// web depends on api, api depends on db
	services := []compose.Service{
		dependent("web", "api"),
		dependent("api", "db"),
		dependent("db"),
	}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"db", "api", "web"}, sortedNames(result))
}

func TestTopologicalSort_DiamondDependencies(t *testing.T) {
	//       web
	//      /   \
	//    api   cache
	//      \   /
	//       db
	services := []compose.Service{
		dependent("web", "api", "cache"),
		dependent("api", "db"),
		dependent("cache", "db"),
		dependent("db"),
	}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"db", "api", "cache", "web"}, sortedNames(result))
}

func TestTopologicalSort_MultipleRoots(t *testing.T) {
	// Two independent chains: web→api and worker→db
	services := []compose.Service{
		dependent("web", "api"),
		dependent("api"),
		dependent("worker", "db"),
		dependent("db"),
	}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"api", "db", "web", "worker"}, sortedNames(result))
}

func TestTopologicalSort_CycleFallback(t *testing.T) {
	services := []compose.Service{
		dependent("a", "b"),
		dependent("b", "a"),
	}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"a", "b"}, sortedNames(result))
}

func TestTopologicalSort_PartialCycle(t *testing.T) {
	// c has no dependencies, a and b form a cycle
	services := []compose.Service{
		dependent("a", "b"),
		dependent("b", "a"),
		dependent("c"),
	}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"c", "a", "b"}, sortedNames(result))
}

func TestTopologicalSort_DeepChain(t *testing.T) {
	// a → b → c → d → e
	services := []compose.Service{
		dependent("a", "b"),
		dependent("b", "c"),
		dependent("c", "d"),
		dependent("d", "e"),
		dependent("e"),
	}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, sortedNames(result))
}

func TestTopologicalSort_PreservesServiceData(t *testing.T) {
	services := []compose.Service{
		service("web",
			directive("image", "nginx:latest"),
			directive("depends_on", []any{"api"}),
		),
		service("api", directive("image", "myapp:1.0")),
	}
	result := TopologicalSort(services)

	assert.Equal(t, []string{"api", "web"}, sortedNames(result))
	image, ok := result[1].Lookup("image")
	assert.True(t, ok)
	assert.Equal(t, "nginx:latest", image)
}

func TestTopologicalSort_MissingDependencyIgnored(t *testing.T) {
	services := []compose.Service{
		dependent("web", "api"),
		dependent("db"),
	}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"web", "db"}, sortedNames(result))
}

func TestTopologicalSort_SelfDependencyIgnored(t *testing.T) {
	services := []compose.Service{
		dependent("web", "web", "db"),
		dependent("db"),
	}
	result := TopologicalSort(services)
	assert.Equal(t, []string{"db", "web"}, sortedNames(result))
}
