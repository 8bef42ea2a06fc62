package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ExternalHostSink uploads media to a third-party hosting service over
// HTTP multipart. The host keeps ownership of the blob: we get a URL
// back but cannot delete it later, so Delete is a no-op error and Owns
// always reports false.
type ExternalHostSink struct {
	uploadURL string
	apiKey    string
	preset    string
	client    *http.Client
}

// NewExternalHostSink creates a sink backed by a third-party media host
func NewExternalHostSink(uploadURL, apiKey, preset string) *ExternalHostSink {
	return &ExternalHostSink{
		uploadURL: uploadURL,
		apiKey:    apiKey,
		preset:    preset,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

type externalUploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	Bytes     int64  `json:"bytes"`
}

// Upload posts the blob as multipart form data and returns the hosted URL
func (e *ExternalHostSink) Upload(ctx context.Context, data []byte, category, userID, filename string, progress ProgressFunc) (*UploadResult, error) {
	if progress != nil {
		progress(0)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if e.preset != "" {
		_ = writer.WriteField("upload_preset", e.preset)
	}
	_ = writer.WriteField("folder", category)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("media host returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed externalUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	url := parsed.SecureURL
	if url == "" {
		url = parsed.URL
	}
	if url == "" {
		return nil, fmt.Errorf("media host response carried no URL")
	}

	if progress != nil {
		progress(100)
	}

	return &UploadResult{
		Key:  parsed.PublicID,
		URL:  url,
		Size: int64(len(data)),
	}, nil
}

// Owns always reports false: hosted blobs are not ours to manage
func (e *ExternalHostSink) Owns(url string) bool {
	return false
}

// Delete is unsupported on the external host
func (e *ExternalHostSink) Delete(ctx context.Context, url string) error {
	return fmt.Errorf("external media host does not support deletes")
}

var _ MediaSink = (*ExternalHostSink)(nil)
