package models

import "time"

// Sentiment is the tone of a brand mention inside an AI answer
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether s is one of the known sentiments
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// BrandKind distinguishes the tracked brand from its competitors
type BrandKind string

const (
	BrandPrimary    BrandKind = "primary"
	BrandCompetitor BrandKind = "competitor"
)

// Brand is a tracked entity whose presence in AI answers is measured
type Brand struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	Kind        BrandKind `json:"type"`
	Color       string    `json:"color"`
	Variations  []string  `json:"variations"` // alternate surface forms used for mention detection
}

// Prompt is a tracked search query executed repeatedly against the AI system
type Prompt struct {
	ID        string   `json:"id"`
	QueryText string   `json:"query"`
	RunIDs    []string `json:"runIds"` // chronological
}

// Citation is a source the AI answer referenced during a run
type Citation struct {
	Domain string `json:"domain"`
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Order  int    `json:"citationOrder"`
}

// Run is one timestamped execution of a prompt
type Run struct {
	ID           string     `json:"id"`
	PromptID     string     `json:"promptId"`
	Timestamp    time.Time  `json:"scrapedAt"`
	ResponseText string     `json:"responseText,omitempty"`
	Citations    []Citation `json:"sources,omitempty"`
}

// MentionRecord is one brand's outcome within one run of one prompt
type MentionRecord struct {
	PromptID  string    `json:"promptId"`
	RunID     string    `json:"runId"`
	BrandID   string    `json:"brandId"`
	Mentioned bool      `json:"mentioned"`
	Position  int       `json:"position"` // 0 = not ranked
	Sentiment Sentiment `json:"sentiment"`
	Timestamp time.Time `json:"timestamp"`
}

// Source is a cited domain with its usage statistics
type Source struct {
	Domain       string  `json:"domain"`
	UsageRate    float64 `json:"usage"`        // 0-100
	AvgCitations float64 `json:"avgCitations"` // >= 0
}

// EntityKind selects which side of a mention record an id refers to
type EntityKind string

const (
	EntityBrand  EntityKind = "brand"
	EntityPrompt EntityKind = "prompt"
)

// EntityRef identifies a brand or a prompt
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// BrandRef builds a reference to a brand
func BrandRef(id string) EntityRef { return EntityRef{Kind: EntityBrand, ID: id} }

// PromptRef builds a reference to a prompt
func PromptRef(id string) EntityRef { return EntityRef{Kind: EntityPrompt, ID: id} }

// Matches reports whether the record belongs to the referenced entity
func (r EntityRef) Matches(rec MentionRecord) bool {
	switch r.Kind {
	case EntityBrand:
		return rec.BrandID == r.ID
	case EntityPrompt:
		return rec.PromptID == r.ID
	}
	return false
}
