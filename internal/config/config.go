// Package config holds the generator settings read from site.yaml, the
// environment and flags.
package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pbutland/ai-darwin-awards/internal/phase"
)

// EnvPrefix prefixes every environment override, e.g. AWARDS_PHASE.
const EnvPrefix = "AWARDS"

type Config struct {
	SiteName    string         `mapstructure:"siteName"`
	BaseURL     string         `mapstructure:"baseURL"`
	DocsDir     string         `mapstructure:"docsDir"`
	Phase       string         `mapstructure:"phase"`
	CurrentYear int            `mapstructure:"currentYear"`
	AwardsYear  int            `mapstructure:"awardsYear"`
	Data        DataConfig     `mapstructure:"data"`
	Templates   TemplateConfig `mapstructure:"templates"`
	ContentDir  string         `mapstructure:"contentDir"`
	LayoutsDir  string         `mapstructure:"layoutsDir"`
	Sitemap     SitemapConfig  `mapstructure:"sitemap"`
	Feed        FeedConfig     `mapstructure:"feed"`
	LogLevel    string         `mapstructure:"logLevel"`
}

// DataConfig locates the JSON records. An empty Results skips the results
// pages.
type DataConfig struct {
	Nominees string `mapstructure:"nominees"`
	Results  string `mapstructure:"results"`
}

type TemplateConfig struct {
	Nominee        string `mapstructure:"nominee"`
	Results        string `mapstructure:"results"`
	NomineeResults string `mapstructure:"nomineeResults"`
}

type SitemapConfig struct {
	Exclude []string `mapstructure:"exclude"`
}

type FeedConfig struct {
	MaxItems int    `mapstructure:"maxItems"`
	Contact  string `mapstructure:"contact"`
}

// SetDefaults registers a default for every key, so that every key can also
// be set from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("siteName", "AI Darwin Awards")
	v.SetDefault("baseURL", "https://aidarwinawards.org")
	v.SetDefault("docsDir", "docs")
	v.SetDefault("phase", string(phase.Nomination))
	v.SetDefault("currentYear", phase.FirstAwardsYear)
	v.SetDefault("awardsYear", phase.FirstAwardsYear)
	v.SetDefault("data.nominees", "docs/data/v1/nominees.json")
	v.SetDefault("data.results", "docs/data/v1/results.json")
	v.SetDefault("templates.nominee", "scripts/templates/nominee-template.html")
	v.SetDefault("templates.results", "scripts/templates/results-template.html")
	v.SetDefault("templates.nomineeResults", "scripts/templates/nominee-results-template.html")
	v.SetDefault("contentDir", "content")
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("sitemap.exclude", []string{"404.html", "templates/*"})
	v.SetDefault("feed.maxItems", 20)
	v.SetDefault("feed.contact", "contact@aidarwinawards.org (AI Darwin Awards)")
	v.SetDefault("logLevel", "info")
}

// NewViper returns a viper instance with the defaults and environment
// overrides wired up. Config file lookup is left to the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the generator cannot work with.
func (c Config) Validate() error {
	if _, err := c.PhaseContext(); err != nil {
		return err
	}
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("baseURL must be set"))
	}
	if c.DocsDir == "" {
		errs = append(errs, errors.New("docsDir must be set"))
	}
	if c.Data.Nominees == "" {
		errs = append(errs, errors.New("data.nominees must be set"))
	}
	if c.Feed.MaxItems < 0 {
		errs = append(errs, fmt.Errorf("feed.maxItems must not be negative, got %d", c.Feed.MaxItems))
	}
	for _, pattern := range c.Sitemap.Exclude {
		if _, err := path.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("sitemap.exclude pattern %q: %w", pattern, err))
		}
	}
	return errors.Join(errs...)
}

// PhaseContext is the validated phase configuration.
func (c Config) PhaseContext() (phase.Context, error) {
	p, err := phase.Parse(c.Phase)
	if err != nil {
		return phase.Context{}, err
	}
	ctx := phase.Context{Phase: p, CurrentYear: c.CurrentYear, AwardsYear: c.AwardsYear}
	if err := ctx.Validate(); err != nil {
		return phase.Context{}, err
	}
	return ctx, nil
}

// DocsPath joins elem onto the docs directory.
func (c Config) DocsPath(elem ...string) string {
	return filepath.Join(append([]string{c.DocsDir}, elem...)...)
}
