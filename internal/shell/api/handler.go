// Package api provides HTTP handlers for the conversion API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/artpar/shipit/internal/core/compose"
	"github.com/artpar/shipit/internal/core/deployment"
	"github.com/artpar/shipit/internal/core/validation"
)

// DefaultMaxBodyBytes limits the size of a convert request body.
const DefaultMaxBodyBytes = 1 << 20

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	logger        *slog.Logger
	defaultMode   deployment.Mode
	defaultOrder  deployment.Order
	maxConcurrent int
	maxBodyBytes  int64
	version       string
}

// HandlerConfig holds the conversion defaults applied to requests that leave
// a field empty.
type HandlerConfig struct {
	DefaultMode   deployment.Mode
	DefaultOrder  deployment.Order
	MaxConcurrent int
	MaxBodyBytes  int64
	Version       string
}

// NewHandler creates a new API handler.
func NewHandler(cfg HandlerConfig, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = deployment.ModeConfig
	}
	if cfg.DefaultOrder == "" {
		cfg.DefaultOrder = deployment.OrderDeclared
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		logger:        l,
		defaultMode:   cfg.DefaultMode,
		defaultOrder:  cfg.DefaultOrder,
		maxConcurrent: cfg.MaxConcurrent,
		maxBodyBytes:  cfg.MaxBodyBytes,
		version:       cfg.Version,
	}
}

// Routes returns the router with all routes configured. spec serves the
// OpenAPI document and may be nil.
func (h *Handler) Routes(spec http.HandlerFunc) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	r.Get("/health", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/convert", h.handleConvert)
		if spec != nil {
			r.Get("/openapi.json", spec)
		}
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Version: h.version})
}

// =============================================================================
// Conversion Handlers
// =============================================================================

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", CodeValidation)
		return
	}

	if field, msg := validation.ValidateConvertFields(req.Mode, req.Order); field != "" {
		h.writeError(w, http.StatusBadRequest, field+": "+msg, CodeValidation)
		return
	}
	mode, order := validation.ResolveConvertFields(req.Mode, req.Order, h.defaultMode, h.defaultOrder)

	// Variables resolve from their defaults only; the server environment is
	// never exposed to request content.
	project, err := compose.ParseProject(req.Content, compose.ParseOptions{
		ProjectName: req.ProjectName,
		Logger:      h.logger,
	})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), CodeParse)
		return
	}

	templates, err := deployment.WalkProjectConcurrent(r.Context(), *project, deployment.WalkOptions{
		Mode:          mode,
		Order:         order,
		MaxConcurrent: h.maxConcurrent,
		Logger:        h.logger,
	})
	if err != nil {
		status, code := conversionErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("conversion failed", "project", project.Name, "error", err)
		}
		h.writeError(w, status, err.Error(), code)
		return
	}

	resp := ConvertResponse{
		ConversionID: uuid.New().String(),
		ProjectName:  project.Name,
		Mode:         mode,
		Templates:    templates,
	}
	h.logger.Info("project converted",
		"conversion_id", resp.ConversionID,
		"project", project.Name,
		"mode", mode,
		"templates", len(templates),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// conversionErrorStatus maps a walk error to a status and error code.
func conversionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, deployment.ErrUnknownCapability):
		return http.StatusUnprocessableEntity, CodeUnknownCapability
	case errors.Is(err, deployment.ErrMissingPersistentVolumeClaim):
		return http.StatusUnprocessableEntity, CodeMissingClaim
	case errors.Is(err, deployment.ErrInvalidDirective):
		return http.StatusUnprocessableEntity, CodeInvalidDirective
	case errors.Is(err, deployment.ErrInvalidMode):
		return http.StatusBadRequest, CodeValidation
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
