package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Upload limits. Videos get more headroom than images.
const (
	MaxImageSize = 10 << 20 // 10 MB
	MaxVideoSize = 100 << 20
)

// ProgressFunc receives upload progress in percent (0-100)
type ProgressFunc func(percent int)

// UploadResult describes where an uploaded blob ended up
type UploadResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// MediaSink abstracts the blob store behind uploads. The backend is
// chosen once at startup; handlers and services only see this interface.
// Owns reports whether a URL points at this sink, so deletes can skip
// blobs that live somewhere we cannot remove them from.
type MediaSink interface {
	Upload(ctx context.Context, data []byte, category, userID, filename string, progress ProgressFunc) (*UploadResult, error)
	Owns(url string) bool
	Delete(ctx context.Context, url string) error
}

// ValidateUpload rejects unsupported types and oversized payloads before
// any bytes leave the process
func ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		if size > MaxImageSize {
			return fmt.Errorf("image exceeds %d bytes", int64(MaxImageSize))
		}
	case ".mp4", ".webm", ".mov":
		if size > MaxVideoSize {
			return fmt.Errorf("video exceeds %d bytes", int64(MaxVideoSize))
		}
	default:
		return fmt.Errorf("unsupported file type %q", ext)
	}
	return nil
}

// contentType returns the MIME type for supported extensions
func contentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
