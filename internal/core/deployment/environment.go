package deployment

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Environment Normalization
// =============================================================================

// ExpandEnvironment turns an environment directive value into canonical
// name/value pairs.
//
// Accepted shapes:
//   - mapping of NAME to value; keyOrder gives the document order of the
//     keys (nil falls back to sorted keys)
//   - list of "NAME" or "NAME=VALUE" strings; "NAME" yields a nil Value
//
// Scalar mapping values are rendered as strings, null stays nil.
//
// Example:
//
//	ExpandEnvironment([]any{"A=1", "B"}, nil)
//	// Returns: [{A 1} {B <nil>}]
func ExpandEnvironment(value any, keyOrder []string) ([]EnvVar, error) {
	switch v := value.(type) {
	case nil:
		return []EnvVar{}, nil
	case map[string]any:
		keys := keyOrder
		if len(keys) != len(v) {
			keys = sortedKeys(v)
		}
		vars := make([]EnvVar, 0, len(v))
		for _, k := range keys {
			val, err := scalarString(v[k])
			if err != nil {
				return nil, fmt.Errorf("variable %s: %w", k, err)
			}
			vars = append(vars, EnvVar{Name: k, Value: val})
		}
		return vars, nil
	case []any:
		vars := make([]EnvVar, 0, len(v))
		for _, item := range v {
			entry, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list entry %v is not a string", item)
			}
			name, val, found := strings.Cut(entry, "=")
			if !found {
				vars = append(vars, EnvVar{Name: name})
				continue
			}
			vars = append(vars, EnvVar{Name: name, Value: &val})
		}
		return vars, nil
	default:
		return nil, fmt.Errorf("expected a mapping or a list, got %T", value)
	}
}

// EnvironmentToMap collapses canonical pairs into a name to value mapping.
// Later duplicates replace earlier ones.
func EnvironmentToMap(vars []EnvVar) map[string]*string {
	out := make(map[string]*string, len(vars))
	for _, v := range vars {
		out[v.Name] = v.Value
	}
	return out
}

// ProjectEnvironment shapes canonical pairs for the output mode: the pair
// list for ModeConfig, a mapping for ModeTask.
func ProjectEnvironment(mode Mode, vars []EnvVar) any {
	if mode == ModeTask {
		return EnvironmentToMap(vars)
	}
	if vars == nil {
		return []EnvVar{}
	}
	return vars
}

func scalarString(v any) (*string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &val, nil
	case int, int64, uint64, float64, bool:
		s := fmt.Sprint(val)
		return &s, nil
	default:
		return nil, fmt.Errorf("value of type %T is not a scalar", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
