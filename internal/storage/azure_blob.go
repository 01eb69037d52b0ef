package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.uber.org/zap"
)

// AzureBlobStorage keeps each document as a <name>.json blob in one container
type AzureBlobStorage struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewAzureBlobStorage creates a new Azure Blob Storage instance and ensures the container exists
func NewAzureBlobStorage(connectionString, containerName string, logger *zap.Logger) (*AzureBlobStorage, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	_, err = client.CreateContainer(context.Background(), containerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	logger.Info("Azure Blob Storage initialized",
		zap.String("container", containerName),
	)

	return &AzureBlobStorage{
		client:        client,
		containerName: containerName,
		logger:        logger,
	}, nil
}

func blobName(name string) string {
	return name + ".json"
}

// Read downloads the document blob
func (s *AzureBlobStorage) Read(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, s.containerName, blobName(name), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", name, err)
	}
	return data, nil
}

// Write uploads the document, replacing any previous version
func (s *AzureBlobStorage) Write(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	contentType := "application/json"
	_, err := s.client.UploadBuffer(ctx, s.containerName, blobName(name), data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob: %w", err)
	}

	s.logger.Debug("Collection written to Azure Blob Storage",
		zap.String("blobName", blobName(name)),
		zap.String("container", s.containerName),
		zap.Int("size", len(data)),
	)

	return nil
}

// Ping fetches the container properties
func (s *AzureBlobStorage) Ping(ctx context.Context) error {
	_, err := s.client.ServiceClient().NewContainerClient(s.containerName).GetProperties(ctx, nil)
	if err != nil {
		return fmt.Errorf("blob container unavailable: %w", err)
	}
	return nil
}
