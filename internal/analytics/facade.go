package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/aiseo/brand-visibility/internal/storage"
	"github.com/sirupsen/logrus"
)

// BrandMetrics is a brand with its metric and trend for one window
type BrandMetrics struct {
	Brand  models.Brand            `json:"brand"`
	Metric models.AggregatedMetric `json:"metric"`
	Trend  models.Trend            `json:"trend"`
}

// BrandMention is one brand's outcome inside a single run
type BrandMention struct {
	BrandID   string           `json:"brandId"`
	BrandName string           `json:"brandName"`
	Mentioned bool             `json:"mentioned"`
	Position  int              `json:"position"`
	Sentiment models.Sentiment `json:"sentiment"`
}

// PromptMetrics is a prompt with its pooled metric across all runs
type PromptMetrics struct {
	Prompt models.Prompt           `json:"prompt"`
	Metric models.AggregatedMetric `json:"metric"`
	// Brands is the per-brand breakdown of the most recent run
	Brands []BrandMention `json:"brands"`
}

// RunDetail is one run with its own metric and per-brand breakdown
type RunDetail struct {
	Run    models.Run              `json:"run"`
	Number int                     `json:"runNumber"` // 1-based
	Metric models.AggregatedMetric `json:"metric"`
	Brands []BrandMention          `json:"brands"`
}

// PromptDetail is a prompt plus every run in chronological order
type PromptDetail struct {
	Prompt models.Prompt           `json:"prompt"`
	Metric models.AggregatedMetric `json:"metric"`
	Runs   []RunDetail             `json:"runs"`
}

// RunAt selects a run by 0-based index
func (d *PromptDetail) RunAt(index int) (RunDetail, bool) {
	if index < 0 || index >= len(d.Runs) {
		return RunDetail{}, false
	}
	return d.Runs[index], true
}

// Latest returns the most recent run
func (d *PromptDetail) Latest() (RunDetail, bool) {
	return d.RunAt(len(d.Runs) - 1)
}

// KPI is a dashboard value with its change against the prior window
type KPI struct {
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// Dashboard holds the headline numbers for the primary brand
type Dashboard struct {
	Primary      *models.Brand `json:"primary,omitempty"`
	Visibility   KPI           `json:"visibility"`
	AvgPosition  KPI           `json:"avgPosition"`
	TotalPrompts int           `json:"totalPrompts"`
	TotalSources int           `json:"totalSources"`
	TotalRuns    int           `json:"totalRuns"`
}

// TimelinePoint is the visibility of every brand inside one bucket
type TimelinePoint struct {
	Start  time.Time          `json:"date"`
	Values map[string]float64 `json:"values"` // brand id -> visibility
}

// Facade composes aggregation, trend classification and the record store
// into the read models served to the presentation layer
type Facade struct {
	store      storage.RecordReader
	classifier Classifier
	now        func() time.Time
}

// NewFacade creates a facade over store
func NewFacade(store storage.RecordReader, classifier Classifier) *Facade {
	return &Facade{
		store:      store,
		classifier: classifier,
		now:        time.Now,
	}
}

// Now is the clock used to anchor relative windows
func (f *Facade) Now() time.Time {
	return f.now()
}

// ListBrandsWithMetrics returns every brand with its metric over window and
// the trend against the prior window of equal length, sorted by visibility
// descending then display name.
func (f *Facade) ListBrandsWithMetrics(window models.Window) ([]BrandMetrics, error) {
	if window.Inverted() {
		return nil, ErrInvalidWindow
	}

	brands, err := f.store.Brands()
	if err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}

	result := make([]BrandMetrics, 0, len(brands))
	for _, brand := range brands {
		bm, err := f.brandMetrics(brand, window)
		if err != nil {
			return nil, err
		}
		result = append(result, bm)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Metric.Visibility != b.Metric.Visibility {
			return a.Metric.Visibility > b.Metric.Visibility
		}
		an, bn := strings.ToLower(a.Brand.DisplayName), strings.ToLower(b.Brand.DisplayName)
		if an != bn {
			return an < bn
		}
		if a.Brand.DisplayName != b.Brand.DisplayName {
			return a.Brand.DisplayName < b.Brand.DisplayName
		}
		return a.Brand.ID < b.Brand.ID
	})

	return result, nil
}

// BrandMetric aggregates a single brand. Brands absent from the collection
// with no records fail with ErrUnknownEntity.
func (f *Facade) BrandMetric(brandID string, window models.Window) (BrandMetrics, error) {
	if window.Inverted() {
		return BrandMetrics{}, ErrInvalidWindow
	}

	brands, err := f.store.Brands()
	if err != nil {
		return BrandMetrics{}, fmt.Errorf("failed to load brands: %w", err)
	}
	for _, brand := range brands {
		if brand.ID == brandID {
			return f.brandMetrics(brand, window)
		}
	}

	records, err := f.store.MentionRecords(models.BrandRef(brandID), models.AllTime)
	if err != nil {
		return BrandMetrics{}, fmt.Errorf("failed to load mentions of %s: %w", brandID, err)
	}
	metric, err := Aggregate(Input{Entity: models.BrandRef(brandID), Records: records, Window: window})
	if err != nil {
		return BrandMetrics{}, err
	}

	brand := models.Brand{ID: brandID, DisplayName: brandID, Kind: models.BrandCompetitor}
	return BrandMetrics{Brand: brand, Metric: metric, Trend: metric.Trend}, nil
}

func (f *Facade) brandMetrics(brand models.Brand, window models.Window) (BrandMetrics, error) {
	ref := models.BrandRef(brand.ID)

	records, err := f.store.MentionRecords(ref, window)
	if err != nil {
		return BrandMetrics{}, fmt.Errorf("failed to load mentions of %s: %w", brand.ID, err)
	}
	metric, err := AggregateBrand(brand.ID, records, window)
	if err != nil {
		return BrandMetrics{}, err
	}

	var previous *models.AggregatedMetric
	if prevWindow, ok := window.Previous(); ok {
		prevRecords, err := f.store.MentionRecords(ref, prevWindow)
		if err != nil {
			return BrandMetrics{}, fmt.Errorf("failed to load prior mentions of %s: %w", brand.ID, err)
		}
		prev, err := AggregateBrand(brand.ID, prevRecords, prevWindow)
		if err != nil {
			return BrandMetrics{}, err
		}
		previous = &prev
	}

	metric.Trend = f.classifier.ClassifyMetrics(metric, previous)
	return BrandMetrics{Brand: brand, Metric: metric, Trend: metric.Trend}, nil
}

// ListPromptsWithMetrics returns prompts in store order with their pooled
// metric over all runs. filter is a case-insensitive substring match on the
// query text; an empty filter keeps every prompt.
func (f *Facade) ListPromptsWithMetrics(filter string) ([]PromptMetrics, error) {
	prompts, err := f.store.Prompts()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	brands, err := f.store.Brands()
	if err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}

	needle := strings.ToLower(filter)
	result := make([]PromptMetrics, 0, len(prompts))

	for _, prompt := range prompts {
		if needle != "" && !strings.Contains(strings.ToLower(prompt.QueryText), needle) {
			continue
		}

		records, err := f.store.MentionRecords(models.PromptRef(prompt.ID), models.AllTime)
		if err != nil {
			return nil, fmt.Errorf("failed to load mentions of prompt %s: %w", prompt.ID, err)
		}
		metric, err := AggregatePrompt(prompt, len(brands), records, models.AllTime)
		if err != nil {
			return nil, err
		}

		pm := PromptMetrics{Prompt: prompt, Metric: metric, Brands: []BrandMention{}}
		if n := len(prompt.RunIDs); n > 0 {
			pm.Brands = breakdown(brands, recordsOfRun(records, prompt.RunIDs[n-1]))
		}
		result = append(result, pm)
	}

	return result, nil
}

// PromptDetail returns the prompt with every run and its per-brand breakdown.
// Brands without a record in a run are shown as not mentioned.
func (f *Facade) PromptDetail(promptID string) (*PromptDetail, error) {
	prompts, err := f.store.Prompts()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	var prompt *models.Prompt
	for i := range prompts {
		if prompts[i].ID == promptID {
			prompt = &prompts[i]
			break
		}
	}
	if prompt == nil {
		return nil, fmt.Errorf("%w: prompt %q", ErrUnknownEntity, promptID)
	}

	brands, err := f.store.Brands()
	if err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}
	runs, err := f.store.Runs(promptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load runs of %s: %w", promptID, err)
	}
	records, err := f.store.MentionRecords(models.PromptRef(promptID), models.AllTime)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentions of prompt %s: %w", promptID, err)
	}

	metric, err := AggregatePrompt(*prompt, len(brands), records, models.AllTime)
	if err != nil {
		return nil, err
	}

	detail := &PromptDetail{Prompt: *prompt, Metric: metric, Runs: make([]RunDetail, 0, len(runs))}
	for i, run := range runs {
		runRecords := recordsOfRun(records, run.ID)
		runMetric, err := Aggregate(Input{
			Entity:     models.PromptRef(promptID),
			Records:    runRecords,
			Window:     models.AllTime,
			KnownRuns:  1,
			Registered: true,
			Brands:     len(brands),
		})
		if err != nil {
			return nil, err
		}

		citations := append([]models.Citation(nil), run.Citations...)
		sort.SliceStable(citations, func(a, b int) bool { return citations[a].Order < citations[b].Order })
		run.Citations = citations

		detail.Runs = append(detail.Runs, RunDetail{
			Run:    run,
			Number: i + 1,
			Metric: runMetric,
			Brands: breakdown(brands, runRecords),
		})
	}

	logrus.Debugf("Built detail for prompt %s with %d runs", promptID, len(detail.Runs))
	return detail, nil
}

// ListSources returns sources by usage descending, then domain
func (f *Facade) ListSources() ([]models.Source, error) {
	sources, err := f.store.Sources()
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	out := append([]models.Source{}, sources...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UsageRate != out[j].UsageRate {
			return out[i].UsageRate > out[j].UsageRate
		}
		return out[i].Domain < out[j].Domain
	})
	return out, nil
}

// Dashboard summarises the primary brand over window
func (f *Facade) Dashboard(window models.Window) (*Dashboard, error) {
	if window.Inverted() {
		return nil, ErrInvalidWindow
	}

	prompts, err := f.store.Prompts()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	sources, err := f.store.Sources()
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	brands, err := f.store.Brands()
	if err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}

	dash := &Dashboard{TotalPrompts: len(prompts), TotalSources: len(sources)}
	for _, p := range prompts {
		dash.TotalRuns += len(p.RunIDs)
	}

	primary, ok := PrimaryBrand(brands)
	if !ok {
		return dash, nil
	}
	dash.Primary = &primary

	bm, err := f.brandMetrics(primary, window)
	if err != nil {
		return nil, err
	}
	dash.Visibility = KPI{Value: bm.Metric.Visibility, Change: bm.Trend.Delta}
	dash.AvgPosition = KPI{Value: RoundTenth(bm.Metric.AvgPosition)}

	if prevWindow, ok := window.Previous(); ok && !bm.Trend.Provisional {
		prevRecords, err := f.store.MentionRecords(models.BrandRef(primary.ID), prevWindow)
		if err != nil {
			return nil, fmt.Errorf("failed to load prior mentions of %s: %w", primary.ID, err)
		}
		prev, err := AggregateBrand(primary.ID, prevRecords, prevWindow)
		if err != nil {
			return nil, err
		}
		if prev.AvgPosition > 0 && bm.Metric.AvgPosition > 0 {
			dash.AvgPosition.Change = RoundTenth(bm.Metric.AvgPosition - prev.AvgPosition)
		}
	}

	return dash, nil
}

// VisibilityTimeline splits window into buckets and reports every brand's
// visibility per bucket. An unbounded window is narrowed to the span of the
// recorded mentions.
func (f *Facade) VisibilityTimeline(window models.Window, bucket time.Duration) ([]TimelinePoint, error) {
	if window.Inverted() {
		return nil, ErrInvalidWindow
	}
	if bucket <= 0 {
		bucket = 24 * time.Hour
	}

	brands, err := f.store.Brands()
	if err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}

	recordsByBrand := make(map[string][]models.MentionRecord, len(brands))
	var first, last time.Time
	for _, brand := range brands {
		records, err := f.store.MentionRecords(models.BrandRef(brand.ID), window)
		if err != nil {
			return nil, fmt.Errorf("failed to load mentions of %s: %w", brand.ID, err)
		}
		recordsByBrand[brand.ID] = records
		for _, rec := range records {
			if first.IsZero() || rec.Timestamp.Before(first) {
				first = rec.Timestamp
			}
			if rec.Timestamp.After(last) {
				last = rec.Timestamp
			}
		}
	}

	span := window
	if span.Start.IsZero() {
		span.Start = first
	}
	if span.End.IsZero() {
		span.End = last
	}
	if span.Start.IsZero() || span.End.IsZero() {
		return []TimelinePoint{}, nil
	}

	if n := span.End.Sub(span.Start) / bucket; n > maxTimelineBuckets {
		return nil, fmt.Errorf("%w: %d buckets exceed limit of %d", ErrInvalidWindow, n, maxTimelineBuckets)
	}

	points := []TimelinePoint{}
	for start := span.Start; !start.After(span.End); start = start.Add(bucket) {
		end := start.Add(bucket - time.Nanosecond)
		if end.After(span.End) {
			end = span.End
		}
		b := models.Window{Start: start, End: end}

		point := TimelinePoint{Start: start, Values: make(map[string]float64, len(brands))}
		for _, brand := range brands {
			metric, err := AggregateBrand(brand.ID, recordsByBrand[brand.ID], b)
			if err != nil {
				return nil, err
			}
			point.Values[brand.ID] = metric.Visibility
		}
		points = append(points, point)
	}

	return points, nil
}

const maxTimelineBuckets = 1000

// PrimaryBrand returns the first brand of kind primary
func PrimaryBrand(brands []models.Brand) (models.Brand, bool) {
	for _, b := range brands {
		if b.Kind == models.BrandPrimary {
			return b, true
		}
	}
	return models.Brand{}, false
}

// IsNotFound reports whether err means the entity does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownEntity)
}

func recordsOfRun(records []models.MentionRecord, runID string) []models.MentionRecord {
	var out []models.MentionRecord
	for _, rec := range records {
		if rec.RunID == runID {
			out = append(out, rec)
		}
	}
	return out
}

// breakdown lists every known brand's outcome in a run, in brand order.
// Brands without a record are reported as not mentioned and neutral.
func breakdown(brands []models.Brand, runRecords []models.MentionRecord) []BrandMention {
	byBrand := make(map[string]models.MentionRecord, len(runRecords))
	for _, rec := range runRecords {
		if _, dup := byBrand[rec.BrandID]; !dup {
			byBrand[rec.BrandID] = rec
		}
	}

	out := make([]BrandMention, 0, len(brands))
	for _, b := range brands {
		m := BrandMention{BrandID: b.ID, BrandName: b.DisplayName, Sentiment: models.SentimentNeutral}
		if rec, ok := byBrand[b.ID]; ok && rec.Mentioned {
			m.Mentioned = true
			m.Position = rec.Position
			if rec.Sentiment.Valid() {
				m.Sentiment = rec.Sentiment
			}
		}
		out = append(out, m)
	}
	return out
}
