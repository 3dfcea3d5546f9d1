package storage

import (
	"sort"
	"sync"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/sirupsen/logrus"
)

// MemoryStore serves a dataset snapshot from memory
type MemoryStore struct {
	mu sync.RWMutex
	ds Dataset
}

// Ensure MemoryStore implements RecordStore
var _ RecordStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store over a copy of ds. A nil dataset yields an
// empty store.
func NewMemoryStore(ds *Dataset) *MemoryStore {
	s := &MemoryStore{}
	if ds != nil {
		s.ds = Dataset{
			Brands:   append([]models.Brand(nil), ds.Brands...),
			Prompts:  append([]models.Prompt(nil), ds.Prompts...),
			Runs:     append([]models.Run(nil), ds.Runs...),
			Mentions: append([]models.MentionRecord(nil), ds.Mentions...),
			Sources:  append([]models.Source(nil), ds.Sources...),
		}
		s.ds.link()
	}
	return s
}

// MentionRecords returns the records of one entity inside window, in store order
func (s *MemoryStore) MentionRecords(ref models.EntityRef, window models.Window) ([]models.MentionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.MentionRecord
	for _, rec := range s.ds.Mentions {
		if ref.Matches(rec) && window.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) Brands() ([]models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Brand{}, s.ds.Brands...), nil
}

func (s *MemoryStore) Prompts() ([]models.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Prompt{}, s.ds.Prompts...), nil
}

func (s *MemoryStore) Sources() ([]models.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Source{}, s.ds.Sources...), nil
}

// Runs returns the prompt's runs ordered by timestamp
func (s *MemoryStore) Runs(promptID string) ([]models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := []models.Run{}
	for _, run := range s.ds.Runs {
		if run.PromptID == promptID {
			runs = append(runs, run)
		}
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// CreateBrand validates spec and appends the brand
func (s *MemoryStore) CreateBrand(spec BrandSpec) (models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	brand, err := NormalizeBrandSpec(spec, s.ds.Brands)
	if err != nil {
		return models.Brand{}, err
	}

	s.ds.Brands = append(s.ds.Brands, brand)
	logrus.Infof("Created brand %s (%s)", brand.ID, brand.Kind)
	return brand, nil
}

// Snapshot returns a copy of the current dataset
func (s *MemoryStore) Snapshot() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Dataset{
		Brands:   append([]models.Brand{}, s.ds.Brands...),
		Prompts:  append([]models.Prompt{}, s.ds.Prompts...),
		Runs:     append([]models.Run{}, s.ds.Runs...),
		Mentions: append([]models.MentionRecord{}, s.ds.Mentions...),
		Sources:  append([]models.Source{}, s.ds.Sources...),
	}
}
