package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbutland/ai-darwin-awards/internal/config"
	"github.com/pbutland/ai-darwin-awards/internal/sitemap"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Reconciles docs/sitemap.xml with the pages on disk",
	Long: `The sitemap command rediscovers every page under the docs directory and
rewrites sitemap.xml. A page keeps its previous lastmod when its content is
identical to the version committed at HEAD; otherwise it is dated by its
modification time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := updateSitemap(appConfig, logger)
		return err
	},
}

// snapshotter opens the git repository holding the docs directory, falling
// back to treating every page as changed.
func snapshotter(cfg config.Config, logger *zap.Logger) sitemap.Snapshotter {
	repo, err := sitemap.NewGitSnapshotter(cfg.DocsDir)
	if err != nil {
		logger.Warn("No committed snapshot available, every page counts as changed",
			zap.String("dir", cfg.DocsDir), zap.Error(err))
		return sitemap.NoSnapshots{}
	}
	return repo
}

func updateSitemap(cfg config.Config, logger *zap.Logger) (sitemap.Stats, error) {
	r := sitemap.NewReconciler(cfg.BaseURL, cfg.DocsDir, cfg.Sitemap.Exclude, snapshotter(cfg, logger), logger)
	path := cfg.DocsPath("sitemap.xml")
	stats, err := r.UpdateFile(path)
	if err != nil {
		return stats, err
	}
	logger.Info("Updated sitemap",
		zap.String("path", path),
		zap.Int("pages", stats.Pages),
		zap.Int("changed", stats.Changed),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("carried", stats.Carried),
		zap.Int("dropped", stats.Dropped))
	return stats, nil
}

func init() {
	rootCmd.AddCommand(sitemapCmd)
}
