package deployment

import (
	"encoding/json"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// =============================================================================
// Template Types
// =============================================================================

// Template is the conversion result for one service. It is either a
// *DeploymentConfig (ModeConfig) or a *TaskParameters (ModeTask).
type Template interface {
	ServiceName() string
	isTemplate()
}

// DeploymentConfig API constants.
const (
	DeploymentConfigAPIVersion = "v1"
	DeploymentConfigKind       = "DeploymentConfig"
	StrategyRolling            = "Rolling"
)

// DeploymentConfig is the declarative resource for one service.
type DeploymentConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec DeploymentConfigSpec `json:"spec"`
}

// DeploymentConfigSpec is the spec of a DeploymentConfig.
type DeploymentConfigSpec struct {
	Template PodTemplate        `json:"template"`
	Replicas int32              `json:"replicas"`
	Selector map[string]string  `json:"selector"`
	Strategy DeploymentStrategy `json:"strategy"`
}

// PodTemplate describes the pods a DeploymentConfig creates.
type PodTemplate struct {
	metav1.ObjectMeta `json:"metadata"`

	Spec PodSpec `json:"spec"`
}

// PodSpec lists the containers and volumes of a pod template.
type PodSpec struct {
	Containers []Container    `json:"containers"`
	Volumes    []corev1.Volume `json:"volumes,omitempty"`
}

// DeploymentStrategy selects how a DeploymentConfig rolls out.
type DeploymentStrategy struct {
	Type string `json:"type"`
}

// ServiceName returns the name of the service the resource was built from.
func (d *DeploymentConfig) ServiceName() string { return d.Labels[LabelService] }

func (*DeploymentConfig) isTemplate() {}

// TaskParameters are the parameters of an imperative deployment task. Pod
// overrides are merged in as Replicas and State.
type TaskParameters struct {
	ProjectName    string            `json:"project_name"`
	DeploymentName string            `json:"deployment_name"`
	Labels         map[string]string `json:"labels"`
	Containers     []Container       `json:"containers"`
	Replace        bool              `json:"replace"`
	Volumes        []corev1.Volume   `json:"volumes,omitempty"`
	Replicas       *int32            `json:"replicas,omitempty"`
	State          string            `json:"state,omitempty"`
}

// TaskModule is the key task parameters are rendered under.
const TaskModule = "oso_deployment"

// ServiceName returns the name of the service the task was built from.
func (t *TaskParameters) ServiceName() string { return t.DeploymentName }

func (*TaskParameters) isTemplate() {}

// MarshalJSON renders the parameters under the task module key.
func (t TaskParameters) MarshalJSON() ([]byte, error) {
	type params TaskParameters
	return json.Marshal(map[string]params{TaskModule: params(t)})
}
