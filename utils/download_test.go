package utils

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_ShouldDownloadFile(t *testing.T) {
	payload := []byte("facefinder cascade bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	f, err := DownloadFile(srv.URL + "/cascade/facefinder")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	defer f.Close()

	assert.True(t, strings.Contains(filepath.Base(f.Name()), "facefinder"))

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestUtils_DownloadShouldFailOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := DownloadFile(srv.URL + "/missing")
	assert.Error(t, err)
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert.True(t, IsValidUrl("https://github.com/esimov/pigo/"))
	assert.False(t, IsValidUrl("settings/tracking.json"))
	assert.False(t, IsValidUrl("/abs/path/facefinder"))
}

func TestUtils_ShouldDetectValidFileType(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))

	fname := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(fname, buf.Bytes(), 0644))

	ftype, err := DetectContentType(fname)
	require.NoError(t, err)
	assert.Contains(t, ftype, "image")
}
