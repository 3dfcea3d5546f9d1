// Package analytics folds raw mention records into the metrics shown on the
// visibility dashboard and composes them into read models.
//
// Every function in this package is a pure function of its inputs. Prompt
// visibility is always computed from pooled counts over the full record set,
// never as a mean of per-run percentages, so prompts with different run
// counts are weighted consistently.
package analytics

import (
	"fmt"
	"math"

	"github.com/aiseo/brand-visibility/internal/models"
)

// Input is everything the aggregator needs for one entity
type Input struct {
	Entity models.EntityRef
	// Records may contain records of other entities or outside Window; they
	// are filtered out.
	Records []models.MentionRecord
	Window  models.Window
	// KnownRuns is the number of runs the store knows for the entity,
	// regardless of Window.
	KnownRuns int
	// Registered is true when the entity exists in the brand or prompt
	// collection.
	Registered bool
	// Brands is the number of tracked brands. For prompts every run is
	// checked for each of them, so a brand without a record in a run counts
	// as not mentioned. Zero falls back to the records present.
	Brands int
}

type runKey struct {
	promptID string
	runID    string
}

type recordKey struct {
	runKey
	brandID string
}

// Aggregate computes the metric for in.Entity. Brands are measured as the
// share of runs that mention them; prompts as the share of brand slots
// mentioned across their runs.
func Aggregate(in Input) (models.AggregatedMetric, error) {
	if in.Window.Inverted() {
		return models.AggregatedMetric{}, ErrInvalidWindow
	}

	owned := 0
	for _, rec := range in.Records {
		if in.Entity.Matches(rec) {
			owned++
		}
	}
	if owned == 0 && in.KnownRuns == 0 && !in.Registered {
		return models.AggregatedMetric{}, fmt.Errorf("%w: %s %q", ErrUnknownEntity, in.Entity.Kind, in.Entity.ID)
	}

	records := selectRecords(in.Entity, in.Records, in.Window)

	runs := make(map[runKey]struct{}, len(records))
	for _, rec := range records {
		runs[runKey{rec.PromptID, rec.RunID}] = struct{}{}
	}

	metric := fold(records)
	metric.TotalRuns = len(runs)

	switch in.Entity.Kind {
	case models.EntityPrompt:
		metric.Observations = len(records)
		if slots := in.Brands * metric.TotalRuns; slots > metric.Observations {
			metric.Observations = slots
		}
	default:
		metric.Observations = metric.TotalRuns
	}

	metric.Visibility = Percentage(metric.MentionCount, metric.Observations)
	metric.Trend = models.Trend{Direction: models.TrendStable, Provisional: true}

	return metric, nil
}

// AggregateBrand is Aggregate for a brand that is known to exist
func AggregateBrand(brandID string, records []models.MentionRecord, window models.Window) (models.AggregatedMetric, error) {
	return Aggregate(Input{
		Entity:     models.BrandRef(brandID),
		Records:    records,
		Window:     window,
		Registered: true,
	})
}

// AggregatePrompt is Aggregate for a prompt that is known to exist, measured
// against brands tracked brands
func AggregatePrompt(prompt models.Prompt, brands int, records []models.MentionRecord, window models.Window) (models.AggregatedMetric, error) {
	return Aggregate(Input{
		Entity:     models.PromptRef(prompt.ID),
		Records:    records,
		Window:     window,
		KnownRuns:  len(prompt.RunIDs),
		Registered: true,
		Brands:     brands,
	})
}

// selectRecords keeps the entity's records inside the window. A repeated
// (prompt, run, brand) triple keeps its first occurrence.
func selectRecords(entity models.EntityRef, records []models.MentionRecord, window models.Window) []models.MentionRecord {
	seen := make(map[recordKey]struct{}, len(records))
	out := make([]models.MentionRecord, 0, len(records))

	for _, rec := range records {
		if !entity.Matches(rec) || !window.Contains(rec.Timestamp) {
			continue
		}
		key := recordKey{runKey{rec.PromptID, rec.RunID}, rec.BrandID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}

	return out
}

// fold tallies mentions, ranked positions and sentiment. Unmentioned records
// carry no rank and no sentiment signal; a mentioned record with position 0
// counts as a mention but not towards the average position.
func fold(records []models.MentionRecord) models.AggregatedMetric {
	var metric models.AggregatedMetric
	positionSum, ranked := 0, 0

	for _, rec := range records {
		if !rec.Mentioned {
			continue
		}
		metric.MentionCount++
		metric.SentimentCounts.Add(rec.Sentiment)
		if rec.Position > 0 {
			positionSum += rec.Position
			ranked++
		}
	}

	if ranked > 0 {
		metric.AvgPosition = float64(positionSum) / float64(ranked)
	}

	return metric
}

// Percentage returns 100*part/whole rounded to one decimal and clamped to
// [0, 100]. A zero whole yields 0.
func Percentage(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	return clampPercent(RoundTenth(100 * float64(part) / float64(whole)))
}

// RoundTenth rounds half away from zero to one decimal place
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
