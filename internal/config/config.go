package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultProfile is the profile used when none is selected.
const DefaultProfile = "default"

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// Config is the on-disk profile store.
type Config struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile holds the credentials for one platform instance and the
// optional provider keys used by migrations and bootstrap.
type Profile struct {
	BaseURL         string `yaml:"baseUrl" validate:"required,url"`
	ClientID        string `yaml:"clientId" validate:"required"`
	ClientSecret    string `yaml:"clientSecret" validate:"required"`
	Scope           string `yaml:"scope,omitempty"`
	StripeSecretKey string `yaml:"stripeSecretKey,omitempty" validate:"omitempty,startswith=sk_|startswith=rk_"`
	LLMProvider     string `yaml:"llmProvider,omitempty" validate:"omitempty,oneof=openai anthropic"`
	LLMAPIKey       string `yaml:"llmApiKey,omitempty" validate:"required_with=LLMProvider"`
}

// DefaultScope is requested when a profile has no explicit scope.
const DefaultScope = "standard:read standard:write admin:read admin:write product:read product:write billing:read billing:write"

// Scopes returns the OAuth scopes for the profile.
func (p Profile) Scopes() []string {
	s := p.Scope
	if strings.TrimSpace(s) == "" {
		s = DefaultScope
	}
	return strings.Fields(s)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the profile's required fields.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// DefaultPath returns <user config dir>/bunny-cli/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "bunny-cli", "config.yaml"), nil
}

// Load reads the profile store. A missing file yields an empty store.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{Profiles: map[string]Profile{}}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// Save writes the profile store, creating its directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Profile returns the named profile.
func (c *Config) Profile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (run `bunny configure --profile %s`)", ErrProfileNotFound, name, name)
	}
	return p, nil
}

// SetProfile validates and stores p under name.
func (c *Config) SetProfile(name string, p Profile) error {
	p.BaseURL = NormalizeBaseURL(p.BaseURL)
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.Profiles[name] = p
	return nil
}

// RemoveProfile deletes the named profile.
func (c *Config) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	delete(c.Profiles, name)
	return nil
}

// Names returns the profile names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Profiles))
	for n := range c.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NormalizeBaseURL adds an https scheme when missing and strips trailing slashes.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return strings.TrimRight(u, "/")
}

// Mask hides a secret for display. Provider keys (sk_...) keep their
// first 8 and last 3 characters; anything else keeps the last 4.
func Mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case strings.HasPrefix(secret, "sk_") && len(secret) > 11:
		return secret[:8] + "..." + secret[len(secret)-3:]
	case len(secret) > 4:
		return strings.Repeat("*", 8) + secret[len(secret)-4:]
	default:
		return strings.Repeat("*", 8)
	}
}
