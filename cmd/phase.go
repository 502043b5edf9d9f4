package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/pbutland/ai-darwin-awards/internal/phase"
)

var (
	phaseFormat string
	phasePage   string
)

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Prints the navigation, calls to action and status for the configured phase",
	Long: `The phase command derives the phase-dependent UI configuration from the
configured phase, current year and awards year and prints it. With --page the
navigation entry for that page is marked current.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := appConfig.PhaseContext()
		if err != nil {
			return err
		}
		cfg := phase.Derive(ctx)
		if phasePage != "" {
			cfg.Navigation = phase.MarkCurrent(cfg.Navigation, phasePage)
		}
		return printPhase(cmd.OutOrStdout(), cfg, phaseFormat)
	},
}

func printPhase(w io.Writer, cfg phase.Config, format string) error {
	var (
		out []byte
		err error
	)
	switch format {
	case "json":
		out, err = json.MarshalIndent(cfg, "", "  ")
		out = append(out, '\n')
	case "yaml":
		out, err = yaml.Marshal(cfg)
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("encode phase config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func init() {
	phaseCmd.Flags().StringVarP(&phaseFormat, "format", "f", "json", "output format: json or yaml")
	phaseCmd.Flags().StringVar(&phasePage, "page", "", "page to mark current in the navigation, e.g. vote.html")
	rootCmd.AddCommand(phaseCmd)
}
