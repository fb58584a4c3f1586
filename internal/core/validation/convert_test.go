package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artpar/shipit/internal/core/deployment"
)

// =============================================================================
// ValidateConvertFields Tests
// =============================================================================

func TestValidateConvertFields(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		order     string
		wantField string
	}{
		{"defaults", "", "", ""},
		{"config declared", "config", "declared", ""},
		{"task dependencies", "task", "dependencies", ""},
		{"bad mode", "helm", "", "mode"},
		{"bad order", "", "random", "order"},
		{"mode checked first", "helm", "random", "mode"},
		{"case sensitive", "Config", "", "mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, msg := ValidateConvertFields(tt.mode, tt.order)
			assert.Equal(t, tt.wantField, field)
			if tt.wantField == "" {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

// =============================================================================
// ResolveConvertFields Tests
// =============================================================================

func TestResolveConvertFields_Defaults(t *testing.T) {
	mode, order := ResolveConvertFields("", "", deployment.ModeTask, deployment.OrderDependencies)
	assert.Equal(t, deployment.ModeTask, mode)
	assert.Equal(t, deployment.OrderDependencies, order)
}

func TestResolveConvertFields_Explicit(t *testing.T) {
	mode, order := ResolveConvertFields("config", "declared", deployment.ModeTask, deployment.OrderDependencies)
	assert.Equal(t, deployment.ModeConfig, mode)
	assert.Equal(t, deployment.OrderDeclared, order)
}
