package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pbutland/ai-darwin-awards/internal/model"
)

var rssCmd = &cobra.Command{
	Use:   "rss",
	Short: "Regenerates docs/rss.xml",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := appConfig.PhaseContext()
		if err != nil {
			return err
		}
		nominees, err := model.LoadNominees(appConfig.Data.Nominees)
		if err != nil {
			return err
		}
		results, err := loadResults(appConfig, logger)
		if err != nil {
			return err
		}
		winners := model.Winners(model.ResultsByYear(results, nominees), nominees)
		return writeFeed(appConfig, ctx, nominees, announced(ctx, winners), logger)
	},
}

func init() {
	rootCmd.AddCommand(rssCmd)
}
