package analytics

import (
	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/aiseo/brand-visibility/internal/search"
)

// SearchCorpus projects the current brands, prompts and sources into the
// search corpus in store order, each brand carrying its all-time visibility.
func (f *Facade) SearchCorpus() (*search.Corpus, error) {
	brands, err := f.store.Brands()
	if err != nil {
		return nil, err
	}
	measured, err := f.ListBrandsWithMetrics(models.AllTime)
	if err != nil {
		return nil, err
	}
	visibility := make(map[string]float64, len(measured))
	for _, b := range measured {
		visibility[b.Brand.ID] = b.Metric.Visibility
	}
	prompts, err := f.ListPromptsWithMetrics("")
	if err != nil {
		return nil, err
	}
	sources, err := f.store.Sources()
	if err != nil {
		return nil, err
	}

	corpus := &search.Corpus{
		Brands:  make([]search.BrandDoc, 0, len(brands)),
		Prompts: make([]search.PromptDoc, 0, len(prompts)),
		Sources: sources,
	}
	for _, b := range brands {
		corpus.Brands = append(corpus.Brands, search.BrandDoc{
			ID:         b.ID,
			Name:       b.DisplayName,
			Color:      b.Color,
			Visibility: visibility[b.ID],
		})
	}
	for _, p := range prompts {
		corpus.Prompts = append(corpus.Prompts, search.PromptDoc{
			ID:         p.Prompt.ID,
			Query:      p.Prompt.QueryText,
			Visibility: p.Metric.Visibility,
		})
	}

	return corpus, nil
}

// NewSearchIndex returns an index that snapshots the store on first query
func (f *Facade) NewSearchIndex() *search.Index {
	return search.NewIndex(f.SearchCorpus)
}
