// Package blob hosts uploaded files in Azure blob storage.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azblobblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/apperrors"
)

// Store wraps an Azure blob service client.
type Store struct {
	client         *azblob.Client
	accountName    string
	imageContainer string
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewStore creates a blob store using shared-key credentials. imageContainer
// receives re-hosted images.
func NewStore(accountName, accountKey, imageContainer string, logger *zap.Logger) (*Store, error) {
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &Store{
		client:         client,
		accountName:    accountName,
		imageContainer: imageContainer,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		logger:         logger.Named("blob"),
	}, nil
}

// Upload stores data under container/name and returns the blob URL. With
// overwrite false an existing blob fails the upload.
func (s *Store) Upload(ctx context.Context, container, name string, data io.Reader, overwrite bool) (string, error) {
	opts := &azblob.UploadStreamOptions{}
	if !overwrite {
		opts.AccessConditions = &azblobblob.AccessConditions{
			ModifiedAccessConditions: &azblobblob.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		}
	}

	if _, err := s.client.UploadStream(ctx, container, name, data, opts); err != nil {
		return "", fmt.Errorf("failed to upload blob %s/%s: %w", container, name, err)
	}

	blobURL := fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.accountName, container, name)
	s.logger.Info("blob uploaded", zap.String("url", blobURL))
	return blobURL, nil
}

// Size returns the stored size of container/name in bytes.
func (s *Store) Size(ctx context.Context, container, name string) (int64, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(container).NewBlobClient(name)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get blob properties for %s/%s: %w", container, name, err)
	}
	if props.ContentLength == nil {
		return 0, nil
	}
	return *props.ContentLength, nil
}

// Rehost downloads a remote image and re-uploads it to the image container,
// returning the hosted URL.
func (s *Store) Rehost(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image fetch returned %d: %w", resp.StatusCode, apperrors.ErrExternalService)
	}

	name, err := blobNameFromURL(imageURL)
	if err != nil {
		return "", err
	}
	return s.Upload(ctx, s.imageContainer, name, resp.Body, true)
}

func blobNameFromURL(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("bad image url %q: %w", imageURL, apperrors.ErrInvalidInput)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive a blob name from %q: %w", imageURL, apperrors.ErrInvalidInput)
	}
	return name, nil
}
