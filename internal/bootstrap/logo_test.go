package bootstrap

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunnyapp/bunny-cli/internal/platform"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG))
	return buf.Bytes()
}

func TestDownloadImage(t *testing.T) {
	logo := pngBytes(t, 6, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ua", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/typed":
			w.Header().Set("Content-Type", "image/png; charset=binary")
		case "/untyped.webp":
			w.Header().Set("Content-Type", "application/octet-stream")
		default:
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(logo)
	}))
	defer srv.Close()

	img, err := DownloadImage(context.Background(), srv.Client(), srv.URL+"/typed", "ua")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "logo", img.Filename)
	assert.Equal(t, logo, img.Data)

	img, err = DownloadImage(context.Background(), srv.Client(), srv.URL+"/untyped.webp", "ua")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", img.ContentType)

	_, err = DownloadImage(context.Background(), srv.Client(), srv.URL+"/gone.png", "ua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404 Not Found")
}

func TestDimensions(t *testing.T) {
	w, h, ok := Dimensions(platform.Image{Data: pngBytes(t, 120, 40)})
	require.True(t, ok)
	assert.Equal(t, 120, w)
	assert.Equal(t, 40, h)

	_, _, ok = Dimensions(platform.Image{Data: []byte("<svg/>"), ContentType: "image/svg+xml"})
	assert.False(t, ok)
}
