package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/sirupsen/logrus"
)

// Archive layout. Every blob is a JSON document; report and alert names
// sort chronologically.
const (
	ReportPrefix = "reports/"
	AlertPrefix  = "alerts/"
	SnapshotBlob = "datasets/snapshot.json"

	blobTimeLayout  = "2006-01-02-15-04-05"
	jsonContentType = "application/json"
)

// ReportBlobName names the archived report generated at generatedAt
func ReportBlobName(generatedAt time.Time) string {
	return ReportPrefix + "visibility-" + generatedAt.UTC().Format(blobTimeLayout) + ".json"
}

// AlertBlobName names the archived alert raised at raisedAt
func AlertBlobName(raisedAt time.Time) string {
	return AlertPrefix + "alert-" + raisedAt.UTC().Format(blobTimeLayout) + ".json"
}

// AzureStorage archives reports and dataset snapshots in Azure Blob Storage
type AzureStorage struct {
	client        *azblob.Client
	containerName string
}

// Ensure AzureStorage implements StorageInterface
var _ StorageInterface = (*AzureStorage)(nil)

// NewAzureStorage creates a blob client using the default credential chain
// and makes sure the container exists
func NewAzureStorage(ctx context.Context, accountName, containerName string) (*AzureStorage, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}
	if containerName == "" {
		return nil, fmt.Errorf("storage container name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	storage := &AzureStorage{
		client:        client,
		containerName: containerName,
	}

	if err := storage.ensureContainer(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure container exists: %w", err)
	}

	return storage, nil
}

func (s *AzureStorage) ensureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.containerName, nil)
	if err == nil {
		logrus.Infof("Created container %s", s.containerName)
		return nil
	}
	if !strings.Contains(err.Error(), "ContainerAlreadyExists") {
		return fmt.Errorf("failed to create container: %w", err)
	}
	logrus.Debugf("Container %s already exists", s.containerName)
	return nil
}

// Store uploads a JSON document under filename
func (s *AzureStorage) Store(ctx context.Context, filename string, data []byte) error {
	contentType := jsonContentType
	_, err := s.client.UploadBuffer(ctx, s.containerName, filename, data, &azblob.UploadBufferOptions{
		BlockSize:   int64(1024 * 1024),
		Concurrency: 3,
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", filename, err)
	}

	logrus.WithFields(logrus.Fields{
		"blob":      filename,
		"bytes":     len(data),
		"container": s.containerName,
	}).Info("Archived blob")
	return nil
}

// Retrieve downloads the blob named filename
func (s *AzureStorage) Retrieve(ctx context.Context, filename string) ([]byte, error) {
	response, err := s.client.DownloadStream(ctx, s.containerName, filename, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", filename, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", filename, err)
	}

	return data, nil
}

// List returns blob names starting with prefix
func (s *AzureStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	pager := s.client.NewListBlobsFlatPager(s.containerName, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs with prefix %q: %w", prefix, err)
		}
		for _, blob := range page.Segment.BlobItems {
			if blob.Name != nil {
				names = append(names, *blob.Name)
			}
		}
	}

	return names, nil
}

// Delete removes the blob named filename
func (s *AzureStorage) Delete(ctx context.Context, filename string) error {
	if _, err := s.client.DeleteBlob(ctx, s.containerName, filename, nil); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", filename, err)
	}

	logrus.Infof("Deleted %s from container %s", filename, s.containerName)
	return nil
}
