// Package bootstrap derives branding for an entity from its company
// website: scrape the homepage, ask a model for a logo and colors,
// rewrite the entity's email template, then upload and update.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bunnyapp/bunny-cli/internal/platform"
)

// ErrNoEntities means the instance has nothing to brand.
var ErrNoEntities = errors.New("No entities found in this Bunny instance.") //nolint:staticcheck // user-facing message

// Platform is the subset of the platform client the flow needs.
type Platform interface {
	Entities(ctx context.Context) ([]platform.Entity, error)
	UploadBrandingImage(ctx context.Context, entityID, slot string, img platform.Image) error
	UpdateEntity(ctx context.Context, id string, attrs platform.EntityAttributes) (*platform.Entity, error)
}

// Service runs the bootstrap flow.
type Service struct {
	HTTP      *http.Client
	LLM       LLM
	Platform  Platform
	UserAgent string
	Log       zerolog.Logger
}

// Plan is everything Apply will write, shown to the user first.
type Plan struct {
	Domain        string
	Branding      Branding
	Entity        platform.Entity
	EmailTemplate string
	Logo          *platform.Image
}

// Analyze scrapes the site and asks the model for branding. A failed
// page fetch is logged and analysis continues with no metadata.
func (s *Service) Analyze(ctx context.Context, domain string) (string, Branding, error) {
	base := NormalizeDomain(domain)
	if base == "" {
		return "", Branding{}, errors.New("domain is required")
	}

	var meta Meta
	html, err := FetchPage(ctx, s.HTTP, base, s.UserAgent)
	if err != nil {
		s.Log.Warn().Err(err).Str("url", base).Msg("could not fetch website, continuing without page metadata")
	} else {
		meta, err = ExtractMeta(strings.NewReader(html))
		if err != nil {
			s.Log.Warn().Err(err).Msg("could not parse website")
		}
	}
	s.Log.Debug().Interface("meta", meta).Msg("scraped website")

	b, err := AnalyzeBranding(ctx, s.LLM, base, meta)
	if err != nil {
		return "", Branding{}, err
	}
	return base, b, nil
}

// Prepare analyzes the domain, picks the entity and builds the new
// template and logo without writing anything.
func (s *Service) Prepare(ctx context.Context, domain, entity string) (*Plan, error) {
	base, b, err := s.Analyze(ctx, domain)
	if err != nil {
		return nil, err
	}

	entities, err := s.Platform.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching entities: %w", err)
	}
	target, err := SelectEntity(entities, entity)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Domain: base, Branding: b, Entity: target}

	if target.EmailTemplate != "" {
		plan.EmailTemplate, err = GenerateEmailTemplate(ctx, s.LLM, target.EmailTemplate, base, b)
		if err != nil {
			return nil, err
		}
	} else {
		s.Log.Info().Str("entity", target.Name).Msg("entity has no email template, skipping template update")
	}

	if b.LogoURL != "" {
		img, err := DownloadImage(ctx, s.HTTP, b.LogoURL, s.UserAgent)
		if err != nil {
			return nil, err
		}
		plan.Logo = &img
	}
	return plan, nil
}

// WritePreview prints the planned changes.
func (p *Plan) WritePreview(w io.Writer) {
	rule := strings.Repeat("-", 50)
	fmt.Fprintln(w, "Planned changes:")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Entity:            %s\n", p.Entity.Name)
	if p.Logo != nil {
		fmt.Fprintf(w, "  Logo URL:          %s (nav + document)\n", p.Branding.LogoURL)
		if width, height, ok := Dimensions(*p.Logo); ok {
			fmt.Fprintf(w, "  Logo size:         %dx%d %s\n", width, height, p.Logo.ContentType)
		} else {
			fmt.Fprintf(w, "  Logo size:         %d bytes %s\n", len(p.Logo.Data), p.Logo.ContentType)
		}
	} else {
		fmt.Fprintln(w, "  Logo URL:          n/a")
	}
	fmt.Fprintf(w, "  Brand color:       %s\n", hexOrNA(p.Branding.BrandColor))
	fmt.Fprintf(w, "  Accent color:      %s\n", hexOrNA(p.Branding.AccentColor))
	if p.EmailTemplate != "" {
		fmt.Fprintln(w, "  Email template:    updated with brand colors and logo")
	} else {
		fmt.Fprintln(w, "  Email template:    unchanged")
	}
	fmt.Fprintln(w, rule)
}

func hexOrNA(c string) string {
	if c == "" {
		return "n/a"
	}
	return "#" + c
}

// Apply uploads the logo to both branding slots and updates the entity.
func (s *Service) Apply(ctx context.Context, plan *Plan) error {
	if plan.Logo != nil {
		for _, slot := range []string{platform.ImageTopNav, platform.ImageQuote} {
			if err := s.Platform.UploadBrandingImage(ctx, plan.Entity.ID, slot, *plan.Logo); err != nil {
				return fmt.Errorf("uploading %s: %w", slot, err)
			}
			s.Log.Info().Str("slot", slot).Msg("uploaded logo")
		}
	}

	attrs := platform.EntityAttributes{
		BrandColor:    plan.Branding.BrandColor,
		AccentColor:   plan.Branding.AccentColor,
		EmailTemplate: plan.EmailTemplate,
	}
	if attrs == (platform.EntityAttributes{}) {
		return nil
	}
	if _, err := s.Platform.UpdateEntity(ctx, plan.Entity.ID, attrs); err != nil {
		return fmt.Errorf("updating entity: %w", err)
	}
	return nil
}

// SelectEntity finds an entity by ID or case-insensitive name. With no
// selector it only succeeds when there is exactly one entity.
func SelectEntity(entities []platform.Entity, selector string) (platform.Entity, error) {
	if len(entities) == 0 {
		return platform.Entity{}, ErrNoEntities
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		if len(entities) == 1 {
			return entities[0], nil
		}
		return platform.Entity{}, fmt.Errorf("multiple entities found, choose one with --entity:\n%s", entityList(entities))
	}
	for _, e := range entities {
		if e.ID == selector {
			return e, nil
		}
	}
	for _, e := range entities {
		if strings.EqualFold(e.Name, selector) {
			return e, nil
		}
	}
	return platform.Entity{}, fmt.Errorf("entity %q not found, available:\n%s", selector, entityList(entities))
}

func entityList(entities []platform.Entity) string {
	var sb strings.Builder
	for _, e := range entities {
		fmt.Fprintf(&sb, "  %s  %s\n", e.ID, e.Name)
	}
	return strings.TrimRight(sb.String(), "\n")
}
