package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbutland/ai-darwin-awards/internal/config"
	"github.com/pbutland/ai-darwin-awards/internal/feed"
	"github.com/pbutland/ai-darwin-awards/internal/model"
	"github.com/pbutland/ai-darwin-awards/internal/pages"
	"github.com/pbutland/ai-darwin-awards/internal/phase"
	"github.com/pbutland/ai-darwin-awards/internal/render"
	"github.com/pbutland/ai-darwin-awards/internal/sitemap"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Regenerates the site from the nominee and results records",
	Long: `The build command reads the nominee and results JSON records and
regenerates everything derived from them inside the docs directory: nominee
detail pages, the year listing pages, the countdown date, results pages,
Markdown content pages, data/v1/phase.json, sitemap.xml and rss.xml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuildProcess(appConfig, logger)
	},
}

func runBuildProcess(cfg config.Config, logger *zap.Logger) error {
	logger.Info("Starting build",
		zap.String("docsDir", cfg.DocsDir),
		zap.String("baseURL", cfg.BaseURL),
		zap.String("phase", cfg.Phase))

	ctx, err := cfg.PhaseContext()
	if err != nil {
		return err
	}
	nominees, err := model.LoadNominees(cfg.Data.Nominees)
	if err != nil {
		return err
	}
	logger.Info("Loaded nominees", zap.Int("count", len(nominees)))

	r := render.New(cfg.BaseURL)
	if err := writeNomineePages(cfg, r, nominees, logger); err != nil {
		return err
	}
	if err := writeListings(cfg, r, nominees, logger); err != nil {
		return err
	}
	updateCountdown(cfg, nominees, logger)

	winners, err := writeResults(cfg, nominees, logger)
	if err != nil {
		return err
	}

	phaseCfg := phase.Derive(ctx)
	if err := writePhaseConfig(cfg, phaseCfg, logger); err != nil {
		return err
	}
	if err := writeContentPages(cfg, phaseCfg, logger); err != nil {
		return err
	}

	if _, err := updateSitemap(cfg, logger); err != nil {
		return err
	}
	if err := writeFeed(cfg, ctx, nominees, announced(ctx, winners), logger); err != nil {
		return err
	}

	logger.Info("Build completed")
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return string(data), nil
}

// writeNomineePages writes docs/nominees/<slug>.html for every nominee,
// newest record first.
func writeNomineePages(cfg config.Config, r *render.Renderer, nominees []*model.Nominee, logger *zap.Logger) error {
	tmpl, err := readTemplate(cfg.Templates.Nominee)
	if err != nil {
		return err
	}
	for i := len(nominees) - 1; i >= 0; i-- {
		n := nominees[i]
		page, err := r.NomineePage(tmpl, n)
		if err != nil {
			return err
		}
		out := cfg.DocsPath("nominees", n.PageSlug()+".html")
		if err := writeFile(out, []byte(page)); err != nil {
			return err
		}
		logger.Debug("Generated nominee page", zap.String("path", out))
	}
	logger.Info("Generated nominee pages", zap.Int("count", len(nominees)))
	return nil
}

// writeListings rewrites nominees-<year>.html for every year with nominees.
func writeListings(cfg config.Config, r *render.Renderer, nominees []*model.Nominee, logger *zap.Logger) error {
	byYear := model.NomineesByYear(nominees)
	for _, year := range model.SortedYears(byYear) {
		path := cfg.DocsPath("nominees-" + year + ".html")
		page, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("listing page for %s: %w", year, err)
		}
		out, err := r.Listing(page, byYear[year])
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("Updated nominee listing", zap.String("year", year), zap.Int("nominees", len(byYear[year])))
	}
	return nil
}

// updateCountdown moves the countdown to the newest verified nominee. It is
// best effort: a missing script or constant only produces a warning.
func updateCountdown(cfg config.Config, nominees []*model.Nominee, logger *zap.Logger) {
	latest, ok := model.LatestVerified(nominees)
	if !ok {
		logger.Warn("No verified nominees, countdown left unchanged")
		return
	}
	path := cfg.DocsPath("js", "countdown.js")
	script, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Could not read countdown script", zap.String("path", path), zap.Error(err))
		}
		return
	}
	out, ok := render.Countdown(script, latest)
	if !ok {
		logger.Warn("Countdown script has no lastNomineeDate constant", zap.String("path", path))
		return
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		logger.Warn("Could not update countdown script", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("Updated countdown date", zap.String("date", latest.Format(sitemap.DateLayout)))
}

// loadResults reads the results records. A missing or unconfigured results
// file means judging has not been published yet.
func loadResults(cfg config.Config, logger *zap.Logger) ([]*model.Result, error) {
	if cfg.Data.Results == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.Data.Results); errors.Is(err, fs.ErrNotExist) {
		logger.Info("No results file, skipping results", zap.String("path", cfg.Data.Results))
		return nil, nil
	}
	return model.LoadResults(cfg.Data.Results)
}

// writeResults generates results/<year>/results.html and one page per
// eligible result, returning every year's winner.
func writeResults(cfg config.Config, nominees []*model.Nominee, logger *zap.Logger) ([]model.Winner, error) {
	results, err := loadResults(cfg, logger)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	overview, err := readTemplate(cfg.Templates.Results)
	if err != nil {
		return nil, err
	}
	detail, err := readTemplate(cfg.Templates.NomineeResults)
	if err != nil {
		return nil, err
	}

	byYear := model.ResultsByYear(results, nominees)
	for _, year := range model.SortedYears(byYear) {
		y := render.NewYearResults(year, byYear[year], nominees)
		page, err := y.Overview(overview)
		if err != nil {
			return nil, err
		}
		if err := writeFile(cfg.DocsPath("results", year, "results.html"), []byte(page)); err != nil {
			return nil, err
		}
		eligible := y.Eligible()
		for _, res := range eligible {
			page, err := y.NomineeResult(detail, res)
			if err != nil {
				return nil, err
			}
			if err := writeFile(cfg.DocsPath("results", year, res.ID+".html"), []byte(page)); err != nil {
				return nil, err
			}
		}
		logger.Info("Generated results",
			zap.String("year", year),
			zap.Int("total", y.Summary.TotalNominees),
			zap.Int("eligible", len(eligible)),
			zap.String("winner", y.Summary.Winner))
	}
	return model.Winners(byYear, nominees), nil
}

// announced keeps the winners that may be published in the current phase.
func announced(ctx phase.Context, winners []model.Winner) []model.Winner {
	var out []model.Winner
	for _, w := range winners {
		year, err := strconv.Atoi(w.Year)
		if err != nil {
			continue
		}
		if year < ctx.AwardsYear || (year == ctx.AwardsYear && ctx.Phase == phase.ResultsAvailable) {
			out = append(out, w)
		}
	}
	return out
}

func writePhaseConfig(cfg config.Config, phaseCfg phase.Config, logger *zap.Logger) error {
	data, err := json.MarshalIndent(phaseCfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode phase config: %w", err)
	}
	path := cfg.DocsPath("data", "v1", "phase.json")
	if err := writeFile(path, append(data, '\n')); err != nil {
		return err
	}
	logger.Info("Wrote phase configuration", zap.String("path", path), zap.String("phase", string(phaseCfg.Phase)))
	return nil
}

func writeContentPages(cfg config.Config, phaseCfg phase.Config, logger *zap.Logger) error {
	b := pages.NewBuilder(cfg.ContentDir, cfg.LayoutsDir, cfg.DocsDir, logger)
	b.SiteName = cfg.SiteName
	b.BaseURL = cfg.BaseURL
	b.Phase = phaseCfg
	written, err := b.Build()
	if err != nil {
		return err
	}
	if len(written) > 0 {
		logger.Info("Generated content pages", zap.Int("count", len(written)))
	}
	return nil
}

func writeFeed(cfg config.Config, ctx phase.Context, nominees []*model.Nominee, winners []model.Winner, logger *zap.Logger) error {
	b := feed.NewBuilder(cfg.BaseURL, ctx.CurrentYear)
	b.MaxItems = cfg.Feed.MaxItems
	if cfg.Feed.Contact != "" {
		b.Contact = cfg.Feed.Contact
	}

	rss := b.Build(nominees, winners)
	var buf bytes.Buffer
	if err := rss.Encode(&buf); err != nil {
		return err
	}
	path := cfg.DocsPath("rss.xml")
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	logger.Info("Generated RSS feed", zap.String("path", path), zap.Int("items", len(rss.Channel.Items)))
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
