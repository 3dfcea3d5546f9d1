package analytics

import (
	"time"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/aiseo/brand-visibility/internal/storage"
)

var t0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// fixtureDataset has two prompts, four runs and three brands. Over all time
// Shopify and Wix tie at 75% and BigCommerce sits at 50%.
func fixtureDataset() *storage.Dataset {
	return &storage.Dataset{
		Brands: []models.Brand{
			{ID: "shopify", DisplayName: "Shopify", Kind: models.BrandPrimary, Color: "#95bf47"},
			{ID: "wix", DisplayName: "Wix", Kind: models.BrandCompetitor, Color: "#0c6efc"},
			{ID: "bigc", DisplayName: "BigCommerce", Kind: models.BrandCompetitor, Color: "#121118"},
		},
		Prompts: []models.Prompt{
			{ID: "p1", QueryText: "Best ecommerce platform for small business"},
			{ID: "p2", QueryText: "Shopify vs Wix pricing"},
		},
		Runs: []models.Run{
			{ID: "r3", PromptID: "p1", Timestamp: t0.Add(2 * time.Hour), Citations: []models.Citation{
				{Domain: "g2.com", Order: 2},
				{Domain: "shopify.com", Order: 1},
			}},
			{ID: "r1", PromptID: "p1", Timestamp: t0},
			{ID: "r2", PromptID: "p1", Timestamp: t0.Add(time.Hour)},
			{ID: "r1", PromptID: "p2", Timestamp: t0.Add(time.Hour)},
		},
		Mentions: []models.MentionRecord{
			{PromptID: "p1", RunID: "r1", BrandID: "shopify", Mentioned: true, Position: 2, Sentiment: models.SentimentPositive},
			{PromptID: "p1", RunID: "r1", BrandID: "wix", Mentioned: true, Position: 1, Sentiment: models.SentimentNeutral},
			{PromptID: "p1", RunID: "r1", BrandID: "bigc", Mentioned: false},
			{PromptID: "p1", RunID: "r2", BrandID: "shopify", Mentioned: false},
			{PromptID: "p1", RunID: "r2", BrandID: "wix", Mentioned: true, Position: 1, Sentiment: models.SentimentPositive},
			{PromptID: "p1", RunID: "r2", BrandID: "bigc", Mentioned: true, Position: 2, Sentiment: models.SentimentNegative},
			{PromptID: "p1", RunID: "r3", BrandID: "shopify", Mentioned: true, Position: 1, Sentiment: models.SentimentPositive},
			{PromptID: "p1", RunID: "r3", BrandID: "wix", Mentioned: false},
			{PromptID: "p2", RunID: "r1", BrandID: "shopify", Mentioned: true, Position: 1, Sentiment: models.SentimentPositive},
			{PromptID: "p2", RunID: "r1", BrandID: "wix", Mentioned: true, Position: 2, Sentiment: models.SentimentNeutral},
		},
		Sources: []models.Source{
			{Domain: "g2.com", UsageRate: 40, AvgCitations: 1.2},
			{Domain: "shopify.com", UsageRate: 60, AvgCitations: 2},
			{Domain: "capterra.com", UsageRate: 40, AvgCitations: 1},
		},
	}
}

func newFixtureFacade() *Facade {
	f := NewFacade(storage.NewMemoryStore(fixtureDataset()), NewClassifier(DefaultDeadband))
	f.now = func() time.Time { return t0.Add(3 * time.Hour) }
	return f
}
