package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andes-trip-manager/backend/internal/domain"
	"github.com/andes-trip-manager/backend/internal/validation"
)

type sample struct {
	TripID string `json:"viagemId" validate:"required,uuid"`
	Status string `json:"status" validate:"omitempty,oneof=planejada finalizada"`
	Limit  int    `json:"limit" validate:"gte=0,lte=10"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()

	err := v.Validate(sample{TripID: "5b9f0c1e-6f0a-4a53-9f43-0b7b5a3c2d11", Status: "planejada"})

	assert.NoError(t, err)
}

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(sample{Status: "unknown", Limit: 11})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "viagemId is required")
	assert.Contains(t, err.Error(), "status must be one of: planejada finalizada")
	assert.Contains(t, err.Error(), "limit must be at most 10")
}
