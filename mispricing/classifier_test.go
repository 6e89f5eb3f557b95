package mispricing

import (
	"math"
	"testing"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Bands(t *testing.T) {
	c := NewClassifier(DefaultBands())
	tests := []struct {
		name        string
		theo, mkt   float64
		wantPct     float64
		wantVerdict models.Classification
	}{
		{"expensive", 10, 13, 0.30, models.Expensive},
		{"cheap", 10, 7, -0.30, models.Cheap},
		{"fair", 10, 10.5, 0.05, models.Fair},
		{"upper edge is fair", 10, 12, 0.20, models.Fair},
		{"lower edge is fair", 10, 8, -0.20, models.Fair},
		{"market at zero", 10, 0, -1, models.Cheap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := c.Classify(tt.theo, tt.mkt, 0.2, 0.2)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPct, v.MispricingPct, 1e-12)
			assert.Equal(t, tt.wantVerdict, v.Classification)
		})
	}
}

func TestClassify_VRP(t *testing.T) {
	c := NewClassifier(DefaultBands())

	v, err := c.Classify(10, 10, 0.25, 0.15)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, v.VRP, 1e-12)
	assert.Equal(t, models.SellingOpportunity, v.VRPSignal)

	v, err = c.Classify(10, 10, 0.15, 0.25)
	require.NoError(t, err)
	assert.Equal(t, models.BuyingOpportunity, v.VRPSignal)

	v, err = c.Classify(10, 10, 0.2, 0.2)
	require.NoError(t, err)
	assert.Equal(t, models.Neutral, v.VRPSignal)
	assert.Equal(t, models.Fair, v.Classification)
}

func TestClassify_SignalsAreIndependent(t *testing.T) {
	c := NewClassifier(DefaultBands())
	v, err := c.Classify(10, 13, 0.10, 0.30)
	require.NoError(t, err)
	assert.Equal(t, models.Expensive, v.Classification)
	assert.Equal(t, models.BuyingOpportunity, v.VRPSignal)
}

func TestClassify_DegenerateTheoreticalPrice(t *testing.T) {
	c := NewClassifier(DefaultBands())
	for _, theo := range []float64{0, -1, math.NaN()} {
		_, err := c.Classify(theo, 1, 0.2, 0.2)
		require.Error(t, err)
		assert.True(t, models.IsDegenerate(err))
	}
}

func TestClassify_CustomBands(t *testing.T) {
	c := NewClassifier(Bands{Expensive: 0.05, Cheap: -0.10})
	v, err := c.Classify(10, 10.6, 0.2, 0.2)
	require.NoError(t, err)
	assert.Equal(t, models.Expensive, v.Classification)

	v, err = c.Classify(10, 9.2, 0.2, 0.2)
	require.NoError(t, err)
	assert.Equal(t, models.Fair, v.Classification)

	assert.Error(t, Bands{Expensive: -0.1, Cheap: 0.1}.Validate())
}
