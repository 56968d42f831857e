package risk

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/hedgeflow/internal/domain"
)

func TestService_ComputeVaRProfile(t *testing.T) {
	service := NewService(zerolog.Nop())

	profile, err := service.ComputeVaRProfile(2_000_000, 0.3, 63)
	require.NoError(t, err)
	require.Len(t, profile, 3)

	assert.Equal(t, 0.90, profile[0].ConfidenceLevel)
	assert.Equal(t, 0.95, profile[1].ConfidenceLevel)
	assert.Equal(t, 0.99, profile[2].ConfidenceLevel)
	assert.Less(t, profile[0].VaRValue, profile[1].VaRValue)
	assert.Less(t, profile[1].VaRValue, profile[2].VaRValue)
}

func TestService_PropagatesValidationErrors(t *testing.T) {
	service := NewService(zerolog.Nop())

	_, err := service.ComputeVaR(-5, 0.2, 0.95, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.ComputeVaRProfile(100, 0.2, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.ComputeHedgeRatio(2, 0.2, 0.2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.ComputePortfolioRisk([]AssetExposure{{Name: "fuel", ExposureValue: -1}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_ComputeVaRFallbackConfidence(t *testing.T) {
	result, err := NewService(zerolog.Nop()).ComputeVaR(1_000_000, 0.2, 0.8, 21)
	require.NoError(t, err)
	assert.Equal(t, 0.95, result.ConfidenceLevel)
}
