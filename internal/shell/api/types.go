package api

import "github.com/artpar/shipit/internal/core/deployment"

// =============================================================================
// Request Types
// =============================================================================

// ConvertRequest is the request body for converting a project.
type ConvertRequest struct {
	ProjectName string `json:"project_name,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Order       string `json:"order,omitempty"`
	Content     string `json:"content"`
}

// =============================================================================
// Response Types
// =============================================================================

// ConvertResponse is the response for a successful conversion. Templates
// holds DeploymentConfig resources in config mode and task parameters in
// task mode.
type ConvertResponse struct {
	ConversionID string                `json:"conversion_id"`
	ProjectName  string                `json:"project_name"`
	Mode         deployment.Mode       `json:"mode"`
	Templates    []deployment.Template `json:"templates"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeValidation        = "validation_error"
	CodeParse             = "parse_error"
	CodeUnknownCapability = "unknown_capability"
	CodeMissingClaim      = "missing_persistent_volume_claim"
	CodeInvalidDirective  = "invalid_directive"
	CodeInternal          = "internal_error"
)
