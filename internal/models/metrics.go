package models

import "time"

// Direction is the three-way trend label
type Direction string

const (
	TrendUp     Direction = "up"
	TrendDown   Direction = "down"
	TrendStable Direction = "stable"
)

// Trend is the classified change of a metric between two equal-length windows
type Trend struct {
	Direction   Direction `json:"direction"`
	Delta       float64   `json:"delta"`
	Provisional bool      `json:"provisional"` // no prior window to compare against
}

// SentimentCounts tallies mentions by sentiment
type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Add increments the bucket for s. Unknown sentiments count as neutral.
func (c *SentimentCounts) Add(s Sentiment) {
	switch s {
	case SentimentPositive:
		c.Positive++
	case SentimentNegative:
		c.Negative++
	default:
		c.Neutral++
	}
}

// Total is the number of tallied mentions
func (c SentimentCounts) Total() int {
	return c.Positive + c.Neutral + c.Negative
}

// Dominant returns the most frequent sentiment; ties resolve towards neutral,
// then positive.
func (c SentimentCounts) Dominant() Sentiment {
	switch {
	case c.Total() == 0:
		return SentimentNeutral
	case c.Neutral >= c.Positive && c.Neutral >= c.Negative:
		return SentimentNeutral
	case c.Positive >= c.Negative:
		return SentimentPositive
	default:
		return SentimentNegative
	}
}

// AggregatedMetric is the derived summary for one entity over one window.
// It is never persisted.
type AggregatedMetric struct {
	Visibility      float64         `json:"visibility"`  // 0-100, one decimal
	AvgPosition     float64         `json:"avgPosition"` // 0 = no ranked mentions
	MentionCount    int             `json:"totalMentions"`
	SentimentCounts SentimentCounts `json:"sentimentCounts"`
	Trend           Trend           `json:"trend"`
	TotalRuns       int             `json:"totalRuns"`
	Observations    int             `json:"observations"` // visibility denominator
}

// Report is a periodic visibility summary sent to the notification channels
type Report struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Period      string         `json:"period"` // "daily" or "weekly"
	Window      Window         `json:"window"`
	Primary     *BrandSummary  `json:"primary,omitempty"`
	Brands      []BrandSummary `json:"brands"`
	TotalRuns   int            `json:"total_runs"`
	TopSources  []Source       `json:"top_sources"`
}

// BrandSummary is the projection of a brand and its metrics used in reports
type BrandSummary struct {
	BrandID     string          `json:"brand_id"`
	Name        string          `json:"name"`
	Kind        BrandKind       `json:"type"`
	Visibility  float64         `json:"visibility"`
	AvgPosition float64         `json:"avg_position"`
	Mentions    int             `json:"mentions"`
	Sentiment   SentimentCounts `json:"sentiment"`
	Trend       Trend           `json:"trend"`
}

// Alert represents an urgent visibility notification
type Alert struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"` // "critical", "urgent", "info"
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Brand     *BrandSummary `json:"brand,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
