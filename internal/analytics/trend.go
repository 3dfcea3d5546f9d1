package analytics

import (
	"math"

	"github.com/aiseo/brand-visibility/internal/models"
)

// DefaultDeadband is the change, in percentage points, below which a metric
// is considered stable
const DefaultDeadband = 1.0

// Classifier labels the change between two windows as up, down or stable
type Classifier struct {
	Deadband float64
}

// NewClassifier returns a classifier with the given deadband. Negative or NaN
// values fall back to DefaultDeadband.
func NewClassifier(deadband float64) Classifier {
	if deadband < 0 || math.IsNaN(deadband) {
		deadband = DefaultDeadband
	}
	return Classifier{Deadband: deadband}
}

// Classify compares current with previous. A nil previous means there is no
// prior window; the result is stable and provisional.
func (c Classifier) Classify(current float64, previous *float64) models.Trend {
	if previous == nil {
		return models.Trend{Direction: models.TrendStable, Provisional: true}
	}

	delta := RoundTenth(current - *previous)
	trend := models.Trend{Direction: models.TrendStable, Delta: delta}

	switch {
	case delta > c.Deadband:
		trend.Direction = models.TrendUp
	case delta < -c.Deadband:
		trend.Direction = models.TrendDown
	}

	return trend
}

// ClassifyMetrics compares visibility of two aggregated windows. A previous
// window with no observations counts as undefined.
func (c Classifier) ClassifyMetrics(current models.AggregatedMetric, previous *models.AggregatedMetric) models.Trend {
	if previous == nil || previous.Observations == 0 {
		return c.Classify(current.Visibility, nil)
	}
	prev := previous.Visibility
	return c.Classify(current.Visibility, &prev)
}
