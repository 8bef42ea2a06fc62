package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalHostSinkUpload(t *testing.T) {
	var gotAuth string
	var gotPreset string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPreset = r.FormValue("upload_preset")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url":"https://media.example.com/abc123.jpg","public_id":"abc123","bytes":5}`))
	}))
	defer server.Close()

	sink := NewExternalHostSink(server.URL, "test-key", "timepass-preset")

	var lastProgress int
	result, err := sink.Upload(context.Background(), []byte("hello"), "posts", "user-1", "photo.jpg", func(p int) {
		lastProgress = p
	})
	require.NoError(t, err)

	assert.Equal(t, "https://media.example.com/abc123.jpg", result.URL)
	assert.Equal(t, "abc123", result.Key)
	assert.Equal(t, int64(5), result.Size)
	assert.Equal(t, 100, lastProgress)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "timepass-preset", gotPreset)
}

func TestExternalHostSinkUploadServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	sink := NewExternalHostSink(server.URL, "", "")

	_, err := sink.Upload(context.Background(), []byte("data"), "posts", "user-1", "photo.png", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestExternalHostSinkNeverOwnsURLs(t *testing.T) {
	sink := NewExternalHostSink("https://host.example.com/upload", "", "")

	assert.False(t, sink.Owns("https://host.example.com/abc.jpg"))
	assert.False(t, sink.Owns("https://cdn.timepass.app/stories/x.jpg"))
	assert.Error(t, sink.Delete(context.Background(), "https://host.example.com/abc.jpg"))
}

func TestValidateUpload(t *testing.T) {
	assert.NoError(t, ValidateUpload("photo.jpg", 1<<20))
	assert.NoError(t, ValidateUpload("clip.mp4", 50<<20))

	// Oversized
	assert.Error(t, ValidateUpload("photo.jpg", MaxImageSize+1))
	assert.Error(t, ValidateUpload("clip.mp4", MaxVideoSize+1))

	// Unsupported types
	assert.Error(t, ValidateUpload("archive.zip", 100))
	assert.Error(t, ValidateUpload("noextension", 100))
}
