package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Branding is the analyzed result. Colors are bare hex without '#'.
type Branding struct {
	LogoURL     string `json:"logoUrl"`
	BrandColor  string `json:"brandColor"`
	AccentColor string `json:"accentColor"`
}

var nonHex = regexp.MustCompile(`[^0-9a-fA-F]`)

// SanitizeColor strips '#' and anything that is not a hex digit and
// keeps at most 8 digits. It returns "" when nothing is left.
func SanitizeColor(c string) string {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	c = nonHex.ReplaceAllString(c, "")
	if len(c) > 8 {
		c = c[:8]
	}
	return c
}

// NormalizeDomain turns a bare domain into an https URL.
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	if d == "" {
		return ""
	}
	if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") {
		return d
	}
	return "https://" + d
}

// ResolveURL resolves a possibly relative ref against base.
func ResolveURL(base, ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		u, err := url.Parse(base)
		if err != nil || u.Host == "" {
			return strings.TrimRight(base, "/") + ref
		}
		return u.Scheme + "://" + u.Host + ref
	default:
		return strings.TrimRight(base, "/") + "/" + ref
	}
}

// GuessMimeType infers an image type from a URL, defaulting to PNG.
func GuessMimeType(u string) string {
	l := strings.ToLower(u)
	switch {
	case strings.Contains(l, ".png"):
		return "image/png"
	case strings.Contains(l, ".jpg"), strings.Contains(l, ".jpeg"):
		return "image/jpeg"
	case strings.Contains(l, ".gif"):
		return "image/gif"
	case strings.Contains(l, ".webp"):
		return "image/webp"
	case strings.Contains(l, ".svg"):
		return "image/svg+xml"
	case strings.Contains(l, ".ico"):
		return "image/x-icon"
	default:
		return "image/png"
	}
}

const brandingSystemPrompt = `You are a branding analyst. Given metadata extracted from a company's website, you extract branding information. Always respond with valid JSON only, no markdown fences.`

const brandingPromptTemplate = `Analyze this website metadata and extract branding information:

%s

Respond with a JSON object with these exact keys:
{
  "logoUrl": "the best logo image URL. Prefer images with 'logo' in their alt text first, then apple-touch-icon, then og:image; avoid favicons and generic page images",
  "brandColor": "#RRGGBB hex color. Use theme-color if available, otherwise infer the primary brand color from context",
  "accentColor": "#RRGGBB hex color. A secondary color visibly distinct from brandColor. If the site has a clear secondary color use that; otherwise produce a lighter tint of brandColor by blending it toward white (e.g. mix 40%% white into the brand color). Do NOT default to orange or any color unrelated to the brand."
}

If you cannot determine a value, make a reasonable professional default derived from the brand. Return only valid JSON.`

func brandingContext(domain string, m Meta) string {
	lines := []string{"Domain: " + domain}
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Page title", m.Title)
	add("OG title", m.OGTitle)
	add("OG description", m.OGDescription)
	add(`Images with "logo" in alt text (best candidates)`, strings.Join(m.LogoImages, ", "))
	add("OG image", m.OGImage)
	add("Twitter image", m.TwitterImage)
	add("Apple touch icon", m.AppleIcon)
	add("Favicon", m.Favicon)
	add("Theme color", m.ThemeColor)
	add("Other images", strings.Join(m.Images, ", "))
	return strings.Join(lines, "\n")
}

// AnalyzeBranding asks the model for a logo and colors. The logo URL is
// resolved against baseURL and colors are sanitized.
func AnalyzeBranding(ctx context.Context, llm LLM, baseURL string, m Meta) (Branding, error) {
	text, err := llm.Complete(ctx, Prompt{
		System:    brandingSystemPrompt,
		User:      fmt.Sprintf(brandingPromptTemplate, brandingContext(baseURL, m)),
		MaxTokens: 1024,
		JSON:      true,
	})
	if err != nil {
		return Branding{}, fmt.Errorf("analyzing branding: %w", err)
	}

	var b Branding
	if err := json.Unmarshal([]byte(extractJSON(text)), &b); err != nil {
		return Branding{}, fmt.Errorf("parsing branding response: %w", err)
	}
	b.LogoURL = ResolveURL(baseURL, strings.TrimSpace(b.LogoURL))
	b.BrandColor = SanitizeColor(b.BrandColor)
	b.AccentColor = SanitizeColor(b.AccentColor)
	return b, nil
}

// extractJSON drops markdown fences and surrounding prose some models add.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

const templateSystemPrompt = `You are an HTML email template specialist. When given an HTML email template and brand assets, you update the template to reflect the new branding. Return only the complete updated HTML, no explanation, no markdown fences.`

const templatePrompt = `Update the HTML email template below to use this branding:
- Domain: {{domain}}
- Logo URL: {{logo}}
- Brand color (bare hex, no #): {{brand}}
- Accent color (bare hex, no #): {{accent}}

Apply these changes:
1. Replace the logo <img> src attribute with the new logo URL
2. Replace the button background-color with #{{brand}}
3. Replace the accent color bar (the div with a solid background color) with #{{accent}}
4. Replace any other hardcoded brand/link colors with #{{brand}} or #{{accent}} as appropriate
5. Remove the support email link (the "Questions? We're all ears!" mailto link or any similar mailto: link in the template)
6. In the footer, remove all Bunny-specific content: the "Bunny, Inc." tagline text, and the LinkedIn/X/YouTube social media icon links
7. If the domain has known social media presence, add appropriate social links in the footer in the same style; otherwise leave the social links section empty
8. Replace any remaining references to "Bunny" in the footer text with the company name inferred from the domain
9. Preserve all Liquid/Handlebars template variables like {{body}}, {{company.name}}, {{quote.portal_url}} exactly as-is

Return only the complete updated HTML template.

Existing template:
`

// GenerateEmailTemplate rewrites existing with the analyzed branding.
// The accent falls back to the brand color.
func GenerateEmailTemplate(ctx context.Context, llm LLM, existing, domain string, b Branding) (string, error) {
	accent := b.AccentColor
	if accent == "" {
		accent = b.BrandColor
	}
	r := strings.NewReplacer(
		"{{domain}}", domain,
		"{{logo}}", b.LogoURL,
		"{{brand}}", b.BrandColor,
		"{{accent}}", accent,
	)
	text, err := llm.Complete(ctx, Prompt{
		System:    templateSystemPrompt,
		User:      r.Replace(templatePrompt) + existing,
		MaxTokens: 4096,
	})
	if err != nil {
		return "", fmt.Errorf("generating email template: %w", err)
	}
	return strings.TrimSpace(text), nil
}
