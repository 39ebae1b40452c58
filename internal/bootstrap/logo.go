package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/bunnyapp/bunny-cli/internal/platform"
)

// DownloadImage fetches an image for upload. The response Content-Type
// is used when it names an image type; otherwise it is guessed from the URL.
func DownloadImage(ctx context.Context, hc *http.Client, url, userAgent string) (platform.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return platform.Image{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return platform.Image{}, fmt.Errorf("downloading logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return platform.Image{}, fmt.Errorf("downloading logo: HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return platform.Image{}, fmt.Errorf("reading logo: %w", err)
	}

	ct := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if !strings.HasPrefix(ct, "image/") {
		ct = GuessMimeType(url)
	}
	return platform.Image{
		Filename:    "logo",
		ContentType: ct,
		Data:        data,
	}, nil
}

// Dimensions decodes img and returns its pixel size. Formats without a
// registered decoder (svg, ico, webp) report ok=false.
func Dimensions(img platform.Image) (width, height int, ok bool) {
	decoded, err := imaging.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return 0, 0, false
	}
	b := decoded.Bounds()
	return b.Dx(), b.Dy(), true
}
