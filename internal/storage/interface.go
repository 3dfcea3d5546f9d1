package storage

import (
	"context"

	"github.com/aiseo/brand-visibility/internal/models"
)

// StorageInterface defines the contract for blob storage operations
type StorageInterface interface {
	Store(ctx context.Context, filename string, data []byte) error
	Retrieve(ctx context.Context, filename string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, filename string) error
}

// RecordReader is the read side of the mention record store. Implementations
// return a consistent snapshot; callers re-read after writes.
type RecordReader interface {
	MentionRecords(ref models.EntityRef, window models.Window) ([]models.MentionRecord, error)
	Brands() ([]models.Brand, error)
	Prompts() ([]models.Prompt, error)
	Sources() ([]models.Source, error)
	// Runs returns the runs of a prompt in chronological order
	Runs(promptID string) ([]models.Run, error)
}

// RecordStore adds the validated brand write path to RecordReader
type RecordStore interface {
	RecordReader
	CreateBrand(spec BrandSpec) (models.Brand, error)
}
