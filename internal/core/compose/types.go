package compose

// =============================================================================
// Project - Main Output Type
// =============================================================================

// Project is a parsed container.yml project.
// Services keep the order in which they appear in the document.
type Project struct {
	Name     string    `json:"name"`
	Services []Service `json:"services"`
}

// Service returns the service with the given name.
func (p *Project) Service(name string) (Service, bool) {
	for _, svc := range p.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}

// ServiceNames returns the service names in document order.
func (p *Project) ServiceNames() []string {
	names := make([]string, 0, len(p.Services))
	for _, svc := range p.Services {
		names = append(names, svc.Name)
	}
	return names
}

// =============================================================================
// Service Types
// =============================================================================

// Service is a single service definition: an ordered list of directives
// exactly as written under services.<name>.
type Service struct {
	Name       string      `json:"name"`
	Directives []Directive `json:"directives"`
}

// Directive is one key of a service definition together with its decoded
// YAML value. Value is one of string, int, float64, bool, nil, []any or
// map[string]any.
type Directive struct {
	Key   string `json:"key"`
	Value any    `json:"value"`

	// KeyOrder lists the keys of a mapping Value in document order.
	KeyOrder []string `json:"-"`
}

// Lookup returns the value of the named directive.
func (s Service) Lookup(key string) (any, bool) {
	for _, d := range s.Directives {
		if d.Key == key {
			return d.Value, true
		}
	}
	return nil, false
}

// LookupDirective returns the named directive including its key order.
func (s Service) LookupDirective(key string) (Directive, bool) {
	for _, d := range s.Directives {
		if d.Key == key {
			return d, true
		}
	}
	return Directive{}, false
}

// Keys returns the directive keys in document order.
func (s Service) Keys() []string {
	keys := make([]string, 0, len(s.Directives))
	for _, d := range s.Directives {
		keys = append(keys, d.Key)
	}
	return keys
}
