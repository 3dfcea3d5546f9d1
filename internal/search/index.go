package search

import (
	"strconv"
	"strings"
	"sync"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxPerCategory caps each group when the caller passes <= 0
	DefaultMaxPerCategory = 5

	// MinQueryLength is the shortest trimmed query that triggers a search
	MinQueryLength = 2
)

// BrandDoc is the search projection of a brand
type BrandDoc struct {
	ID         string
	Name       string
	Color      string
	Visibility float64
}

// PromptDoc is the search projection of a prompt
type PromptDoc struct {
	ID         string
	Query      string
	Visibility float64
}

// Corpus is the snapshot the index is built from. A nil slice is an empty
// category.
type Corpus struct {
	Brands  []BrandDoc
	Prompts []PromptDoc
	Sources []models.Source
}

// Loader supplies the corpus. A nil corpus or an error means the data has
// not loaded yet.
type Loader func() (*Corpus, error)

type entry struct {
	label  string // case-folded
	result Result
}

// Index answers search queries over a corpus snapshot. It is built on the
// first query that finds the corpus available and never changes afterwards;
// create a new Index when the data changes. Until the loader succeeds every
// query retries it.
type Index struct {
	load Loader

	mu      sync.Mutex
	ready   bool
	brands  []entry
	prompts []entry
	sources []entry
}

// NewIndex creates an index that loads its corpus lazily
func NewIndex(load Loader) *Index {
	return &Index{load: load}
}

// NewIndexFromCorpus creates an index over a corpus already in memory
func NewIndexFromCorpus(c *Corpus) *Index {
	return NewIndex(func() (*Corpus, error) { return c, nil })
}

// build loads the corpus unless a previous call already did and reports
// whether the index holds data.
func (i *Index) build() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.ready {
		return true
	}
	if i.load == nil {
		return false
	}
	corpus, err := i.load()
	if err != nil {
		logrus.Debugf("Search corpus unavailable: %v", err)
		return false
	}
	if corpus == nil {
		return false
	}

	for _, b := range corpus.Brands {
		i.brands = append(i.brands, entry{
			label: fold(b.Name),
			result: Result{
				ID:       b.ID,
				Category: CategoryBrands,
				Title:    b.Name,
				Subtitle: formatPercent(b.Visibility) + " visibility",
				Color:    b.Color,
			},
		})
	}
	for _, p := range corpus.Prompts {
		i.prompts = append(i.prompts, entry{
			label: fold(p.Query),
			result: Result{
				ID:       p.ID,
				Category: CategoryPrompts,
				Title:    p.Query,
				Subtitle: formatPercent(p.Visibility) + " visibility",
			},
		})
	}
	for _, s := range corpus.Sources {
		i.sources = append(i.sources, entry{
			label: fold(s.Domain),
			result: Result{
				ID:       s.Domain,
				Category: CategorySources,
				Title:    s.Domain,
				Subtitle: formatPercent(s.UsageRate) + " usage",
			},
		})
	}
	i.ready = true
	return true
}

// Search returns hits for query grouped by category. Queries shorter than
// MinQueryLength after trimming, or an index without data, yield no groups.
func (i *Index) Search(query string, maxPerCategory int) Results {
	out := Results{Groups: []Group{}}

	needle := fold(query)
	if len([]rune(needle)) < MinQueryLength {
		return out
	}
	if maxPerCategory <= 0 {
		maxPerCategory = DefaultMaxPerCategory
	}

	if !i.build() {
		return out
	}

	for _, c := range []struct {
		category Category
		entries  []entry
	}{
		{CategoryBrands, i.brands},
		{CategoryPrompts, i.prompts},
		{CategorySources, i.sources},
	} {
		hits := match(c.entries, needle, maxPerCategory)
		if len(hits) == 0 {
			continue
		}
		out.Groups = append(out.Groups, Group{
			Category: c.category,
			Label:    categoryLabels[c.category],
			Results:  hits,
		})
	}

	return out
}

func match(entries []entry, needle string, limit int) []Result {
	var hits []Result
	for _, e := range entries {
		if len(hits) == limit {
			break
		}
		if strings.Contains(e.label, needle) {
			hits = append(hits, e.result)
		}
	}
	return hits
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
