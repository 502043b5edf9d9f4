package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pbutland/ai-darwin-awards/internal/config"
	"github.com/pbutland/ai-darwin-awards/internal/logging"
)

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "awards-site",
	Short: "Static site generator for the AI Darwin Awards",
	Long: `awards-site regenerates the AI Darwin Awards website from its JSON
records: nominee pages, year listings, results, content pages, the phase
configuration consumed by the browser UI, the RSS feed and a sitemap whose
lastmod dates only move when a page really changed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command, exiting with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./site.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initializeConfig(_ *cobra.Command) error {
	v := config.NewViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("site")
		v.SetConfigType("yaml")
	}

	configUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	} else {
		configUsed = v.ConfigFileUsed()
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	appConfig = cfg

	l, err := logging.New(appConfig.LogLevel, verbose)
	if err != nil {
		return err
	}
	logger = l

	if configUsed != "" {
		logger.Info("Using config file", zap.String("path", configUsed))
	} else {
		logger.Info("No config file found, using defaults and AWARDS_* environment variables")
	}
	return nil
}
