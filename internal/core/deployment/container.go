package deployment

import (
	"fmt"

	"github.com/artpar/shipit/internal/core/compose"
	"github.com/mattn/go-shellwords"
	corev1 "k8s.io/api/core/v1"
)

// =============================================================================
// Directive Tables
// =============================================================================

// ignoredDirectives have no container equivalent and are dropped silently.
var ignoredDirectives = map[string]struct{}{
	"build":          {},
	"labels":         {},
	"links":          {},
	"cgroup_parent":  {},
	"cpuset":         {},
	"cpu_shares":     {},
	"cpu_quota":      {},
	"dev_options":    {},
	"devices":        {},
	"depends_on":     {},
	"dns":            {},
	"dns_search":     {},
	"domainname":     {},
	"enable_ipv6":    {},
	"env_file":       {},
	"user":           {},
	"extends":        {},
	"external_links": {},
	"extra_hosts":    {},
	"hostname":       {},
	"ipc":            {},
	"isolation":      {},
	"logging":        {},
	"log_driver":     {},
	"log_opt":        {},
	"mac_address":    {},
	"mem_limit":      {},
	"memswap_limit":  {},
	"net":            {},
	"network_mode":   {},
	"networks":       {},
	"restart":        {},
	"pid":            {},
	"security_opt":   {},
	"shm_size":       {},
	"stop_signal":    {},
	"ulimits":        {},
	"tmpfs":          {},
	"options":        {},
	"volume_driver":  {},
	"volumes_from":   {},
}

// IsIgnoredDirective reports whether a directive is dropped without effect.
func IsIgnoredDirective(key string) bool {
	_, ok := ignoredDirectives[key]
	return ok
}

// directiveHandler applies one directive value to the plan under construction.
type directiveHandler func(b *containerBuilder, value any) error

// directiveHandlers maps directive names to their handlers. Directives that
// are neither ignored nor listed here are passed through verbatim.
var directiveHandlers = map[string]directiveHandler{
	"cap_add":        (*containerBuilder).addCapabilities,
	"cap_drop":       (*containerBuilder).dropCapabilities,
	"command":        (*containerBuilder).setArgs,
	"container_name": (*containerBuilder).setName,
	"entrypoint":     (*containerBuilder).setCommand,
	"environment":    (*containerBuilder).setEnvironment,
	"ports":          (*containerBuilder).addPorts,
	"expose":         (*containerBuilder).addPorts,
	"privileged":     (*containerBuilder).setPrivileged,
	"read_only":      (*containerBuilder).setReadOnly,
	"stdin_open":     (*containerBuilder).setStdin,
	"volumes":        (*containerBuilder).addVolumes,
	"working_dir":    (*containerBuilder).setWorkingDir,
}

// =============================================================================
// Container Plan Building Functions
// =============================================================================

// BuildContainerPlan builds the container, volumes and pod overrides for one
// service.
//
// This is a pure function. Directives are applied in document order through
// the directive tables; afterwards options.openshift contributes security
// context fields (seLinuxOptions, runAsNonRoot, runAsUser) and pod overrides
// (replicas, state).
//
// Example:
//
//	plan, err := BuildContainerPlan(BuildContainerPlanParams{
//	    ServiceName: "web",
//	    Service:     svc,
//	    Mode:        ModeConfig,
//	})
//	// plan.Container.Name == "web"
func BuildContainerPlan(params BuildContainerPlanParams) (*ContainerPlan, error) {
	options, err := DecodeOpenShiftOptions(params.Service)
	if err != nil {
		return nil, err
	}

	b := &containerBuilder{
		params:  params,
		options: options,
		plan: &ContainerPlan{
			Container: Container{
				Name:            params.ServiceName,
				SecurityContext: &corev1.SecurityContext{},
				Mode:            params.Mode,
			},
		},
	}

	for _, d := range params.Service.Directives {
		if IsIgnoredDirective(d.Key) {
			continue
		}
		handler, ok := directiveHandlers[d.Key]
		if !ok {
			b.passthrough(d.Key, d.Value)
			continue
		}
		b.current = d
		if err := handler(b, d.Value); err != nil {
			return nil, b.wrap(d.Key, err)
		}
	}

	b.applyOptions()
	return b.plan, nil
}

// containerBuilder carries the per-call state of BuildContainerPlan.
type containerBuilder struct {
	params  BuildContainerPlanParams
	options OpenShiftOptions
	plan    *ContainerPlan
	current compose.Directive
}

func (b *containerBuilder) wrap(directive string, err error) error {
	switch e := err.(type) {
	case *UnknownCapabilityError:
		e.Service = b.params.ServiceName
		return e
	case *MissingPersistentVolumeClaimError, *DirectiveError:
		return err
	default:
		return NewDirectiveError(b.params.ServiceName, directive, "invalid value", err)
	}
}

func (b *containerBuilder) passthrough(key string, value any) {
	c := &b.plan.Container
	if c.Passthrough == nil {
		c.Passthrough = make(map[string]any)
	}
	c.Passthrough[key] = value
}

// =============================================================================
// Directive Handlers
// =============================================================================

func (b *containerBuilder) capabilities() *corev1.Capabilities {
	sc := b.plan.Container.SecurityContext
	if sc.Capabilities == nil {
		sc.Capabilities = &corev1.Capabilities{
			Add:  []corev1.Capability{},
			Drop: []corev1.Capability{},
		}
	}
	return sc.Capabilities
}

func (b *containerBuilder) addCapabilities(value any) error {
	caps, err := mapCapabilities(value)
	if err != nil {
		return err
	}
	c := b.capabilities()
	c.Add = append(c.Add, caps...)
	return nil
}

func (b *containerBuilder) dropCapabilities(value any) error {
	caps, err := mapCapabilities(value)
	if err != nil {
		return err
	}
	c := b.capabilities()
	c.Drop = append(c.Drop, caps...)
	return nil
}

func mapCapabilities(value any) ([]corev1.Capability, error) {
	names, err := stringList(value)
	if err != nil {
		return nil, err
	}
	caps := make([]corev1.Capability, 0, len(names))
	for _, name := range names {
		c, err := MapCapability(name)
		if err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	return caps, nil
}

func (b *containerBuilder) setArgs(value any) error {
	args, err := commandLine(value)
	if err != nil {
		return err
	}
	b.plan.Container.Args = args
	return nil
}

func (b *containerBuilder) setCommand(value any) error {
	cmd, err := commandLine(value)
	if err != nil {
		return err
	}
	b.plan.Container.Command = cmd
	return nil
}

func (b *containerBuilder) setName(value any) error {
	name, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", value)
	}
	b.plan.Container.Name = name
	return nil
}

func (b *containerBuilder) setEnvironment(value any) error {
	vars, err := ExpandEnvironment(value, b.current.KeyOrder)
	if err != nil {
		return err
	}
	b.plan.Container.Env = vars
	return nil
}

func (b *containerBuilder) addPorts(value any) error {
	if value == nil {
		value = []any{}
	}
	entries, ok := value.([]any)
	if !ok {
		return fmt.Errorf("expected a list, got %T", value)
	}
	ports, err := ResolvePorts(entries, b.plan.Container.Ports)
	if err != nil {
		return err
	}
	b.plan.Container.Ports = ports
	return nil
}

func (b *containerBuilder) setPrivileged(value any) error {
	v, err := boolValue(value)
	if err != nil {
		return err
	}
	b.plan.Container.SecurityContext.Privileged = &v
	return nil
}

func (b *containerBuilder) setReadOnly(value any) error {
	v, err := boolValue(value)
	if err != nil {
		return err
	}
	b.plan.Container.SecurityContext.ReadOnlyRootFilesystem = &v
	return nil
}

func (b *containerBuilder) setStdin(value any) error {
	v, err := boolValue(value)
	if err != nil {
		return err
	}
	b.plan.Container.Stdin = &v
	return nil
}

func (b *containerBuilder) addVolumes(value any) error {
	if value == nil {
		return nil
	}
	entries, ok := value.([]any)
	if !ok {
		return fmt.Errorf("expected a list, got %T", value)
	}
	volumes, mounts, err := ResolveVolumes(ResolveVolumesParams{
		ServiceName: b.params.ServiceName,
		Entries:     entries,
		Options:     b.options,
		Logger:      b.params.Logger,
	})
	if err != nil {
		return err
	}
	if len(mounts) > 0 {
		b.plan.Container.VolumeMounts = mounts
	}
	b.plan.Volumes = append(b.plan.Volumes, volumes...)
	return nil
}

func (b *containerBuilder) setWorkingDir(value any) error {
	dir, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", value)
	}
	b.plan.Container.WorkingDir = dir
	return nil
}

// applyOptions copies options.openshift into the security context and the
// pod overrides.
func (b *containerBuilder) applyOptions() {
	sc := b.plan.Container.SecurityContext
	if b.options.SELinuxOptions != nil {
		sc.SELinuxOptions = b.options.SELinuxOptions
	}
	if b.options.RunAsNonRoot != nil {
		sc.RunAsNonRoot = b.options.RunAsNonRoot
	}
	if b.options.RunAsUser != nil {
		sc.RunAsUser = b.options.RunAsUser
	}
	b.plan.Pod = PodOverrides{
		Replicas: b.options.Replicas,
		State:    b.options.State,
	}
}

// =============================================================================
// Value Helpers
// =============================================================================

// commandLine accepts a shell-style string or a list of scalars.
func commandLine(value any) ([]string, error) {
	if s, ok := value.(string); ok {
		words, err := shellwords.Parse(s)
		if err != nil {
			return nil, err
		}
		if words == nil {
			words = []string{}
		}
		return words, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a string or a list, got %T", value)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := scalarString(item)
		if err != nil || s == nil {
			return nil, fmt.Errorf("list entry %v is not a scalar", item)
		}
		out = append(out, *s)
	}
	return out, nil
}

func stringList(value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", value)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("list entry %v is not a string", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func boolValue(value any) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("expected a boolean, got %T", value)
	}
	return v, nil
}
