package analytics

import (
	"math"
	"testing"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultDeadband)

	tests := []struct {
		name      string
		current   float64
		previous  *float64
		direction models.Direction
		delta     float64
	}{
		{"Clear rise", 50, ptr(48), models.TrendUp, 2},
		{"Clear drop", 40, ptr(50), models.TrendDown, -10},
		{"Inside deadband", 50, ptr(49.5), models.TrendStable, 0.5},
		{"Exactly at deadband", 51, ptr(50), models.TrendStable, 1},
		{"Exactly at negative deadband", 49, ptr(50), models.TrendStable, -1},
		{"Unchanged", 66.7, ptr(66.7), models.TrendStable, 0},
		{"From zero", 12.5, ptr(0), models.TrendUp, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := c.Classify(tt.current, tt.previous)
			assert.Equal(t, tt.direction, trend.Direction)
			assert.Equal(t, tt.delta, trend.Delta)
			assert.False(t, trend.Provisional)
		})
	}
}

func TestClassifier_NoPreviousIsProvisional(t *testing.T) {
	trend := NewClassifier(DefaultDeadband).Classify(80, nil)

	assert.Equal(t, models.TrendStable, trend.Direction)
	assert.Equal(t, 0.0, trend.Delta)
	assert.True(t, trend.Provisional)
}

func TestClassifier_ClassifyMetrics(t *testing.T) {
	c := NewClassifier(DefaultDeadband)
	current := models.AggregatedMetric{Visibility: 60, Observations: 5}

	t.Run("Previous without observations", func(t *testing.T) {
		trend := c.ClassifyMetrics(current, &models.AggregatedMetric{})
		assert.True(t, trend.Provisional)
		assert.Equal(t, models.TrendStable, trend.Direction)
	})

	t.Run("Nil previous", func(t *testing.T) {
		assert.True(t, c.ClassifyMetrics(current, nil).Provisional)
	})

	t.Run("Previous with observations", func(t *testing.T) {
		trend := c.ClassifyMetrics(current, &models.AggregatedMetric{Visibility: 0, Observations: 4})
		assert.False(t, trend.Provisional)
		assert.Equal(t, models.TrendUp, trend.Direction)
		assert.Equal(t, 60.0, trend.Delta)
	})
}

func TestClassifier_Monotonic(t *testing.T) {
	rank := map[models.Direction]int{
		models.TrendDown:   0,
		models.TrendStable: 1,
		models.TrendUp:     2,
	}

	for _, deadband := range []float64{0, 0.5, 1, 5} {
		c := NewClassifier(deadband)
		for _, previous := range []float64{0, 33.3, 50, 100} {
			last := -1
			for i := 0; i <= 1000; i++ {
				current := float64(i) / 10
				r := rank[c.Classify(current, ptr(previous)).Direction]
				assert.GreaterOrEqual(t, r, last, "deadband %v previous %v current %v", deadband, previous, current)
				last = r
			}
		}
	}
}

func TestNewClassifier_Deadband(t *testing.T) {
	assert.Equal(t, DefaultDeadband, NewClassifier(-1).Deadband)
	assert.Equal(t, DefaultDeadband, NewClassifier(math.NaN()).Deadband)
	assert.Equal(t, 0.0, NewClassifier(0).Deadband)
	assert.Equal(t, 2.5, NewClassifier(2.5).Deadband)

	// a zero deadband labels any rounded change
	trend := NewClassifier(0).Classify(50.1, ptr(50))
	assert.Equal(t, models.TrendUp, trend.Direction)
}
