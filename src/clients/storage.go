package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/models"
)

// StorageClient talks to a supabase-style object storage API over HTTP.
// Objects are uploaded into a single bucket and addressed by path; the
// public URL scheme is <base>/object/public/<bucket>/<path>.
type StorageClient struct {
	baseURL    string
	apiKey     string
	bucket     string
	httpClient *http.Client
}

func NewStorageClient(cfg *config.StorageSettings) *StorageClient {
	return &StorageClient{
		baseURL: cfg.Url,
		apiKey:  cfg.ApiKey,
		bucket:  cfg.Bucket,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Upload stores data under path in the configured bucket and returns the
// public URL of the uploaded object.
func (c *StorageClient) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call storage service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			StatusCode int    `json:"statusCode"`
			Message    string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Message != "" {
			log.WithField("status", resp.StatusCode).Errorf("Storage upload failed: %s", errBody.Message)
		}
		return "", fmt.Errorf("%w: storage returned status %d", models.ErrStorageUpload, resp.StatusCode)
	}

	return c.PublicURL(path), nil
}

// PublicURL returns the public address of an object previously uploaded
// under path.
func (c *StorageClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, c.bucket, path)
}
