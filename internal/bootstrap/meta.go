package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageTimeout bounds the homepage fetch.
const PageTimeout = 10 * time.Second

const maxImages = 5

// Meta is the branding-relevant metadata scraped from a homepage.
type Meta struct {
	Title         string
	OGTitle       string
	OGDescription string
	OGImage       string
	TwitterImage  string
	AppleIcon     string
	Favicon       string
	ThemeColor    string
	LogoImages    []string
	Images        []string
}

// Empty reports whether nothing was found.
func (m Meta) Empty() bool {
	return m.Title == "" && m.OGTitle == "" && m.OGDescription == "" &&
		m.OGImage == "" && m.TwitterImage == "" && m.AppleIcon == "" &&
		m.Favicon == "" && m.ThemeColor == "" &&
		len(m.LogoImages) == 0 && len(m.Images) == 0
}

// ExtractMeta parses html and collects the first match for each field.
func ExtractMeta(r io.Reader) (Meta, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Meta{}, fmt.Errorf("parsing html: %w", err)
	}

	var m Meta
	m.OGImage = metaContent(doc, "property", "og:image")
	m.TwitterImage = metaContent(doc, "name", "twitter:image")
	m.ThemeColor = metaContent(doc, "name", "theme-color")
	m.OGTitle = metaContent(doc, "property", "og:title")
	m.OGDescription = metaContent(doc, "property", "og:description")
	m.AppleIcon = linkHref(doc, "apple-touch-icon")
	m.Favicon = linkHref(doc, "icon", "shortcut icon")
	m.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			return
		}
		if alt, ok := s.Attr("alt"); ok && strings.Contains(strings.ToLower(alt), "logo") {
			m.LogoImages = append(m.LogoImages, src)
		}
		if len(m.Images) < maxImages {
			m.Images = append(m.Images, src)
		}
	})
	return m, nil
}

// metaContent matches the attribute name case-insensitively since
// sites are inconsistent about it.
func metaContent(doc *goquery.Document, attr, value string) string {
	var out string
	doc.Find("meta[content]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr(attr, "")), value) {
			out = s.AttrOr("content", "")
			return out == ""
		}
		return true
	})
	return out
}

func linkHref(doc *goquery.Document, rels ...string) string {
	var out string
	doc.Find("link[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel := strings.TrimSpace(s.AttrOr("rel", ""))
		for _, want := range rels {
			if strings.EqualFold(rel, want) {
				out = s.AttrOr("href", "")
				return out == ""
			}
		}
		return true
	})
	return out
}

// FetchPage downloads a page body as text.
func FetchPage(ctx context.Context, hc *http.Client, url, userAgent string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, PageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}
