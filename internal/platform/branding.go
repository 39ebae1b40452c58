package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
)

// Branding image slots.
const (
	ImageTopNav = "top_nav_image"
	ImageQuote  = "quote_image"
)

// Image is an uploadable file.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadBrandingImage stores img in the named branding slot of an entity.
func (c *Client) UploadBrandingImage(ctx context.Context, entityID, slot string, img Image) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, img.Filename))
	h.Set("Content-Type", img.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating image part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return fmt.Errorf("writing image part: %w", err)
	}
	if err := mw.WriteField("entity_id", entityID); err != nil {
		return fmt.Errorf("writing entity_id: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	u := c.baseURL + "/api/images/branding?" + url.Values{"name": {slot}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, &body)
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusFailure(resp.StatusCode, raw)
	}
	return nil
}
