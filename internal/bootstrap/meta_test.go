package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homepage = `<!doctype html>
<html><head>
<title>
  Acme Corp
</title>
<meta content="https://acme.test/og.png" property="og:image">
<meta name="twitter:image" content="/tw.png">
<meta name="theme-color" content="#ff6600">
<meta property="og:title" content="Acme">
<meta property="og:description" content="Widgets for everyone">
<link rel="apple-touch-icon" href="/apple.png">
<link rel="shortcut icon" href="/favicon.ico">
</head><body>
<img src="/a.png">
<img alt="Acme LOGO" src="/logo.svg">
<img src="/c.png"><img src="/d.png"><img src="/e.png"><img src="/f.png">
<img alt="footer logo" src="/logo-small.png">
</body></html>`

func TestExtractMeta(t *testing.T) {
	m, err := ExtractMeta(strings.NewReader(homepage))
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", m.Title)
	assert.Equal(t, "Acme", m.OGTitle)
	assert.Equal(t, "Widgets for everyone", m.OGDescription)
	assert.Equal(t, "https://acme.test/og.png", m.OGImage)
	assert.Equal(t, "/tw.png", m.TwitterImage)
	assert.Equal(t, "#ff6600", m.ThemeColor)
	assert.Equal(t, "/apple.png", m.AppleIcon)
	assert.Equal(t, "/favicon.ico", m.Favicon)
	assert.Equal(t, []string{"/logo.svg", "/logo-small.png"}, m.LogoImages)
	assert.Equal(t, []string{"/a.png", "/logo.svg", "/c.png", "/d.png", "/e.png"}, m.Images)
	assert.False(t, m.Empty())
}

func TestExtractMeta_Empty(t *testing.T) {
	m, err := ExtractMeta(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, m.Empty())
}

func TestExtractMeta_IconRel(t *testing.T) {
	m, err := ExtractMeta(strings.NewReader(`<link rel="stylesheet" href="/s.css"><link rel="icon" href="/i.png">`))
	require.NoError(t, err)
	assert.Equal(t, "/i.png", m.Favicon)
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(homepage))
	}))
	defer srv.Close()

	html, err := FetchPage(context.Background(), srv.Client(), srv.URL+"/", "test-agent")
	require.NoError(t, err)
	assert.Contains(t, html, "Acme Corp")

	_, err = FetchPage(context.Background(), srv.Client(), srv.URL+"/missing", "test-agent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
