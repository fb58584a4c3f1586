package compose

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/compose-spec/compose-go/v2/template"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Parser Options
// =============================================================================

// ParseOptions controls how a project document is parsed.
type ParseOptions struct {
	// ProjectName overrides the top-level "name" key of the document.
	ProjectName string

	// DefaultProjectName is used when neither ProjectName nor the document
	// names the project.
	DefaultProjectName string

	// Lookup resolves ${VAR} placeholders. A nil Lookup resolves nothing,
	// so placeholders fall back to their defaults (or the empty string).
	Lookup template.Mapping

	// SkipInterpolation leaves ${VAR} placeholders untouched.
	SkipInterpolation bool

	// Logger receives a warning for each unset variable that is replaced by
	// a blank string. Nil uses slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// Parser Functions
// =============================================================================

// ParseProject parses a container.yml document into a Project.
// This is a pure function - no I/O, no side effects. Environment lookups
// happen only through opts.Lookup.
//
// Service order and the order of directives inside each service follow the
// document, which is why the document is walked as a yaml.Node tree instead
// of being decoded into Go maps.
func ParseProject(content string, opts ParseOptions) (*Project, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return nil, NewParseError("", err.Error(), ErrInvalidYAML)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, NewParseError("", "document is not a mapping", ErrInvalidYAML)
	}
	doc := resolveAlias(root.Content[0])
	if doc.Kind != yaml.MappingNode {
		return nil, NewParseError("", "document is not a mapping", ErrInvalidYAML)
	}

	if !opts.SkipInterpolation {
		in := interpolator{mapping: lookupOrEmpty(opts.Lookup), logger: opts.Logger}
		if in.logger == nil {
			in.logger = slog.Default()
		}
		if err := in.interpolate(doc, ""); err != nil {
			return nil, err
		}
	}

	project := &Project{Name: opts.ProjectName}
	var servicesNode *yaml.Node
	for _, pair := range mappingPairs(doc) {
		switch pair.key.Value {
		case "name":
			if project.Name == "" {
				project.Name = pair.value.Value
			}
		case "services":
			servicesNode = resolveAlias(pair.value)
		}
	}

	if project.Name == "" {
		project.Name = opts.DefaultProjectName
	}
	if project.Name == "" {
		return nil, ErrNoProjectName
	}
	if servicesNode == nil || servicesNode.Kind != yaml.MappingNode || len(servicesNode.Content) == 0 {
		return nil, ErrNoServices
	}

	for _, pair := range mappingPairs(servicesNode) {
		svc, err := parseService(pair.key.Value, pair.value)
		if err != nil {
			return nil, err
		}
		project.Services = append(project.Services, svc)
	}

	return project, nil
}

// parseService converts a services.<name> node into a Service.
func parseService(name string, node *yaml.Node) (Service, error) {
	field := "services." + name
	svc := Service{Name: name}

	node = resolveAlias(node)
	switch {
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null":
		return svc, nil
	case node.Kind != yaml.MappingNode:
		return Service{}, NewParseError(field, "service must be a mapping", ErrInvalidService)
	}

	for _, pair := range mappingPairs(node) {
		var value any
		if err := pair.value.Decode(&value); err != nil {
			return Service{}, NewParseError(field+"."+pair.key.Value, err.Error(), ErrInvalidService)
		}
		svc.Directives = append(svc.Directives, Directive{
			Key:      pair.key.Value,
			Value:    normalizeValue(value),
			KeyOrder: keyOrder(pair.value),
		})
	}

	return svc, nil
}

// =============================================================================
// Node Helpers
// =============================================================================

type nodePair struct {
	key   *yaml.Node
	value *yaml.Node
}

// mappingPairs returns the key/value pairs of a mapping node, expanding
// "<<" merge keys. Explicit keys win over merged ones.
func mappingPairs(node *yaml.Node) []nodePair {
	var explicit, merged []nodePair
	seen := make(map[string]bool)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.ShortTag() == "!!merge" {
			merged = append(merged, mergeSources(value)...)
			continue
		}
		seen[key.Value] = true
		explicit = append(explicit, nodePair{key: key, value: value})
	}

	for _, pair := range merged {
		if seen[pair.key.Value] {
			continue
		}
		seen[pair.key.Value] = true
		explicit = append(explicit, pair)
	}
	return explicit
}

// keyOrder returns the keys of a mapping node in document order, or nil for
// any other node kind.
func keyOrder(node *yaml.Node) []string {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return nil
	}
	pairs := mappingPairs(node)
	keys := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		keys = append(keys, pair.key.Value)
	}
	return keys
}

func mergeSources(node *yaml.Node) []nodePair {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.MappingNode:
		return mappingPairs(node)
	case yaml.SequenceNode:
		var pairs []nodePair
		for _, item := range node.Content {
			pairs = append(pairs, mergeSources(item)...)
		}
		return pairs
	default:
		return nil
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// =============================================================================
// Variable Interpolation
// =============================================================================

// uninterpolatedKeys name mappings whose values are never interpolated.
// Volume sources starting with "$" are resolved at deploy time and must reach
// the volume resolver unchanged.
var uninterpolatedKeys = map[string]bool{
	"volumes": true,
}

type interpolator struct {
	mapping template.Mapping
	logger  *slog.Logger
}

// interpolate substitutes ${VAR} and ${VAR:-default} placeholders in string
// scalars using compose-go's template engine. Mapping keys are left alone.
func (in interpolator) interpolate(node *yaml.Node, path string) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" || !strings.Contains(node.Value, "$") {
			return nil
		}
		substituted, err := template.SubstituteWithOptions(node.Value, in.mapping,
			template.WithoutLogging,
			template.WithReplacementFunction(in.replace(path)),
		)
		if err != nil {
			return NewParseError(path, err.Error(), ErrInterpolation)
		}
		node.Value = substituted
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if uninterpolatedKeys[key] {
				continue
			}
			if err := in.interpolate(node.Content[i+1], joinPath(path, key)); err != nil {
				return err
			}
		}
	case yaml.SequenceNode, yaml.DocumentNode:
		for _, child := range node.Content {
			if err := in.interpolate(child, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// replace wraps compose-go's default replacement so that variables falling
// back to a blank string are reported through slog.
func (in interpolator) replace(path string) template.ReplacementFunc {
	return func(substring string, mapping template.Mapping, cfg *template.Config) (string, error) {
		value, applied, err := template.DefaultReplacementAppliedFunc(substring, mapping, cfg)
		if err == nil && !applied {
			in.logger.Warn("variable is not set, defaulting to a blank string",
				"variable", substring,
				"field", path,
			)
		}
		return value, err
	}
}

func lookupOrEmpty(lookup template.Mapping) template.Mapping {
	if lookup != nil {
		return lookup
	}
	return func(string) (string, bool) { return "", false }
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// normalizeValue converts map[any]any values (mappings with non-string keys)
// into map[string]any so that downstream code only deals with one map shape.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalizeValue(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[stringKey(k)] = normalizeValue(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normalizeValue(item)
		}
		return v
	default:
		return value
	}
}

func stringKey(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprint(key)
}
