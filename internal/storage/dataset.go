package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/sirupsen/logrus"
)

// Dataset is the JSON snapshot format shared by the memory store, the CLI
// and the blob archive
type Dataset struct {
	Brands   []models.Brand         `json:"brands"`
	Prompts  []models.Prompt        `json:"prompts"`
	Runs     []models.Run           `json:"runs"`
	Mentions []models.MentionRecord `json:"mentions"`
	Sources  []models.Source        `json:"sources"`
}

// DecodeDataset parses a JSON snapshot. Prompts without explicit run ids get
// them from the runs list, ordered by timestamp; mention records without a
// timestamp inherit their run's.
func DecodeDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	ds.link()
	return &ds, nil
}

// LoadDatasetFile reads a JSON snapshot from disk
func LoadDatasetFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return DecodeDataset(data)
}

// LoadDataset reads a JSON snapshot from blob storage
func LoadDataset(ctx context.Context, blobs StorageInterface, name string) (*Dataset, error) {
	data, err := blobs.Retrieve(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve dataset %s: %w", name, err)
	}
	logrus.Debugf("Loaded dataset %s (%d bytes)", name, len(data))
	return DecodeDataset(data)
}

// SaveDataset writes a JSON snapshot to blob storage
func SaveDataset(ctx context.Context, blobs StorageInterface, name string, ds *Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	return blobs.Store(ctx, name, data)
}

func (ds *Dataset) link() {
	runsByPrompt := make(map[string][]models.Run)
	runTimes := make(map[string]models.Run)

	for _, run := range ds.Runs {
		runsByPrompt[run.PromptID] = append(runsByPrompt[run.PromptID], run)
		runTimes[run.PromptID+"\x00"+run.ID] = run
	}

	for i := range ds.Prompts {
		if len(ds.Prompts[i].RunIDs) > 0 {
			continue
		}
		runs := runsByPrompt[ds.Prompts[i].ID]
		sort.SliceStable(runs, func(a, b int) bool {
			return runs[a].Timestamp.Before(runs[b].Timestamp)
		})
		for _, run := range runs {
			ds.Prompts[i].RunIDs = append(ds.Prompts[i].RunIDs, run.ID)
		}
	}

	for i := range ds.Mentions {
		if !ds.Mentions[i].Timestamp.IsZero() {
			continue
		}
		if run, ok := runTimes[ds.Mentions[i].PromptID+"\x00"+ds.Mentions[i].RunID]; ok {
			ds.Mentions[i].Timestamp = run.Timestamp
		}
	}
}
