package api

import (
	"log/slog"
	"net/http"

	"github.com/artpar/shipit/internal/core/deployment"
	"github.com/artpar/shipit/internal/shell/api/openapi"
)

// =============================================================================
// API Setup
// =============================================================================

// APIConfig holds configuration for the API setup.
type APIConfig struct {
	Logger  *slog.Logger
	Version string

	// Conversion defaults for requests that leave mode or order empty
	DefaultMode   deployment.Mode
	DefaultOrder  deployment.Order
	MaxConcurrent int
	MaxBodyBytes  int64

	// ServerURL is advertised in the OpenAPI document when set
	ServerURL string
}

// SetupAPI creates the complete API router. Returns an http.Handler that can
// be used as the server's main handler.
func SetupAPI(cfg APIConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	h := NewHandler(HandlerConfig{
		DefaultMode:   cfg.DefaultMode,
		DefaultOrder:  cfg.DefaultOrder,
		MaxConcurrent: cfg.MaxConcurrent,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		Version:       cfg.Version,
	}, cfg.Logger)

	return h.Routes(NewOpenAPIGenerator(cfg).Handler())
}

// NewOpenAPIGenerator describes the routes served by SetupAPI.
func NewOpenAPIGenerator(cfg APIConfig) *openapi.Generator {
	opts := []openapi.Option{}
	if cfg.Version != "" {
		opts = append(opts, openapi.WithVersion(cfg.Version))
	}
	if cfg.ServerURL != "" {
		opts = append(opts, openapi.WithServer(cfg.ServerURL))
	}
	gen := openapi.NewGenerator(opts...)

	gen.RegisterOperation(openapi.Operation{
		Method:      http.MethodGet,
		Path:        "/health",
		OperationID: "getHealth",
		Summary:     "Report service health",
		Tag:         "Health",
		Response:    HealthResponse{},
	})
	gen.RegisterOperation(openapi.Operation{
		Method:      http.MethodPost,
		Path:        "/api/v1/convert",
		OperationID: "convertProject",
		Summary:     "Convert a container.yml project into deployment templates",
		Tag:         "Conversion",
		Request:     ConvertRequest{},
		Response:    ConvertResponse{},
		Errors: map[int]any{
			http.StatusBadRequest:          ErrorResponse{},
			http.StatusUnprocessableEntity: ErrorResponse{},
		},
	})

	return gen
}
