package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aiseo/brand-visibility/internal/analytics"
	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/aiseo/brand-visibility/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetJSON = `{
  "brands": [
    {"id": "shopify", "name": "Shopify", "type": "primary", "color": "#95bf47", "variations": ["Shopify"]},
    {"id": "wix", "name": "Wix", "type": "competitor", "color": "#0c6efc", "variations": ["Wix"]}
  ],
  "prompts": [
    {"id": "p1", "query": "Best ecommerce platform"},
    {"id": "p2", "query": "Shopify vs Wix pricing"}
  ],
  "runs": [
    {"id": "r1", "promptId": "p1", "scrapedAt": "2026-01-05T09:00:00Z", "sources": [{"domain": "g2.com", "url": "https://g2.com/compare", "citationOrder": 1}]},
    {"id": "r2", "promptId": "p1", "scrapedAt": "2026-01-05T10:00:00Z"},
    {"id": "r1", "promptId": "p2", "scrapedAt": "2026-01-05T09:30:00Z"}
  ],
  "mentions": [
    {"promptId": "p1", "runId": "r1", "brandId": "shopify", "mentioned": true, "position": 1, "sentiment": "positive"},
    {"promptId": "p1", "runId": "r1", "brandId": "wix", "mentioned": false, "position": 0, "sentiment": "neutral"},
    {"promptId": "p1", "runId": "r2", "brandId": "shopify", "mentioned": true, "position": 2, "sentiment": "neutral"},
    {"promptId": "p1", "runId": "r2", "brandId": "wix", "mentioned": true, "position": 1, "sentiment": "positive"},
    {"promptId": "p2", "runId": "r1", "brandId": "shopify", "mentioned": true, "position": 1, "sentiment": "positive"},
    {"promptId": "p2", "runId": "r1", "brandId": "wix", "mentioned": false, "position": 0, "sentiment": "neutral"}
  ],
  "sources": [
    {"domain": "g2.com", "usage": 40, "avgCitations": 1.5},
    {"domain": "shopify.com", "usage": 60, "avgCitations": 2}
  ]
}`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(datasetJSON), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBrandsCmd(t *testing.T) {
	dataset := writeDataset(t)

	out, err := run(t, "brands", "--dataset", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, "Brands (2)")
	assert.Contains(t, out, "BRAND")
	assert.Contains(t, out, "Shopify")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "33.3%")
	assert.Contains(t, out, "n/a")

	out, err = run(t, "brands", "-d", dataset, "--json")
	require.NoError(t, err)
	var brands []analytics.BrandMetrics
	require.NoError(t, json.Unmarshal([]byte(out), &brands))
	require.Len(t, brands, 2)
	assert.Equal(t, "shopify", brands[0].Brand.ID)
	assert.Equal(t, 100.0, brands[0].Metric.Visibility)
	assert.Equal(t, 1.3, analytics.RoundTenth(brands[0].Metric.AvgPosition))
	assert.Equal(t, "wix", brands[1].Brand.ID)
	assert.Equal(t, 33.3, brands[1].Metric.Visibility)

	_, err = run(t, "brands", "-d", dataset, "--range", "soon")
	assert.Error(t, err)
}

func TestPromptsCmd(t *testing.T) {
	dataset := writeDataset(t)

	out, err := run(t, "prompts", "-d", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, "Prompts (2)")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "Best ecommerce platform")

	out, err = run(t, "prompts", "-d", dataset, "--filter", "PRICING", "--json")
	require.NoError(t, err)
	var prompts []analytics.PromptMetrics
	require.NoError(t, json.Unmarshal([]byte(out), &prompts))
	require.Len(t, prompts, 1)
	assert.Equal(t, "p2", prompts[0].Prompt.ID)
	assert.Equal(t, 50.0, prompts[0].Metric.Visibility)
}

func TestPromptCmd(t *testing.T) {
	dataset := writeDataset(t)

	out, err := run(t, "prompt", "p1", "-d", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, "Best ecommerce platform")
	assert.Contains(t, out, "75% visibility across 2 runs")
	assert.Contains(t, out, "Run 1")
	assert.Contains(t, out, "Run 2")
	assert.Contains(t, out, "[1] g2.com https://g2.com/compare")

	out, err = run(t, "prompt", "p1", "-d", dataset, "--run", "2", "--json")
	require.NoError(t, err)
	var detail analytics.PromptDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	require.Len(t, detail.Runs, 1)
	assert.Equal(t, "r2", detail.Runs[0].Run.ID)
	assert.Equal(t, 100.0, detail.Runs[0].Metric.Visibility)

	_, err = run(t, "prompt", "p1", "-d", dataset, "--run", "5")
	assert.Error(t, err)

	_, err = run(t, "prompt", "ghost", "-d", dataset)
	require.Error(t, err)
	assert.True(t, analytics.IsNotFound(err))

	_, err = run(t, "prompt", "-d", dataset)
	assert.Error(t, err, "prompt id is required")
}

func TestSearchCmd(t *testing.T) {
	dataset := writeDataset(t)

	out, err := run(t, "search", "wix", "-d", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, `2 results for "wix"`)
	assert.Contains(t, out, "Brands")
	assert.Contains(t, out, "33.3% visibility")
	assert.Contains(t, out, "Shopify vs Wix pricing")

	out, err = run(t, "search", "w", "-d", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, `No results for "w"`)

	out, err = run(t, "search", "shop", "-d", dataset, "--limit", "1", "--json")
	require.NoError(t, err)
	var results search.Results
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results.Groups, 3)
	assert.Equal(t, search.CategorySources, results.Groups[2].Category)
	assert.Equal(t, "shopify.com", results.Groups[2].Results[0].ID)
}

func TestReportCmd(t *testing.T) {
	dataset := writeDataset(t)

	out, err := run(t, "report", "-d", dataset, "--period", "daily", "--json")
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "daily", report.Period)
	assert.Len(t, report.Brands, 2)
	require.NotNil(t, report.Primary)
	assert.Equal(t, "Shopify", report.Primary.Name)
	require.Len(t, report.TopSources, 2)
	assert.Equal(t, "shopify.com", report.TopSources[0].Domain)

	out, err = run(t, "report", "-d", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, "weekly visibility report")
	assert.Contains(t, out, "Primary: Shopify")
	assert.Contains(t, out, "Top sources:")

	_, err = run(t, "report", "-d", dataset, "--period", "hourly")
	assert.Error(t, err)
}

func TestImportCmd(t *testing.T) {
	dataset := writeDataset(t)
	db := filepath.Join(t.TempDir(), "visibility.db")

	out, err := run(t, "import", "-d", dataset, "--sqlite", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 brands, 2 prompts, 3 runs, 6 mentions, 2 sources")

	// the database answers the same queries as the snapshot
	out, err = run(t, "brands", "--sqlite", db, "--json")
	require.NoError(t, err)
	var brands []analytics.BrandMetrics
	require.NoError(t, json.Unmarshal([]byte(out), &brands))
	require.Len(t, brands, 2)
	assert.Equal(t, 100.0, brands[0].Metric.Visibility)

	_, err = run(t, "import", "-d", dataset)
	assert.Error(t, err)
}

func TestMissingSource(t *testing.T) {
	_, err := run(t, "brands")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either --dataset or --sqlite is required")

	_, err = run(t, "brands", "-d", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFormatTrend(t *testing.T) {
	assert.Equal(t, "n/a", formatTrend(models.Trend{Provisional: true}))
	assert.Equal(t, "↑ +4.5", formatTrend(models.Trend{Direction: models.TrendUp, Delta: 4.5}))
	assert.Equal(t, "↓ -12", formatTrend(models.Trend{Direction: models.TrendDown, Delta: -12}))
	assert.Equal(t, "→ 0.5", formatTrend(models.Trend{Direction: models.TrendStable, Delta: 0.5}))
	assert.Equal(t, "-", formatPosition(0))
	assert.Equal(t, "1.5", formatPosition(1.5))
}
