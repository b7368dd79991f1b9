// Package morfocmder
package morfocmder

import (
	"github.com/spf13/cobra"

	analyzecmder "github.com/morfolab/morfo/cmd/morfo/analyze"
	authcmder "github.com/morfolab/morfo/cmd/morfo/auth"
	configcmder "github.com/morfolab/morfo/cmd/morfo/config"
	historycmder "github.com/morfolab/morfo/cmd/morfo/history"
	versioncmder "github.com/morfolab/morfo/cmd/version"
)

const morfoLongDesc string = `Morfo is a streaming Turkish morphology tutor for your terminal.

Ask about a word and morfo streams the model's morphological breakdown
as it is generated: each analyzed form appears the moment its analysis
is complete, segmented into color-coded morphemes.

Common commands:
  morfo analyze <word>   Analyze a word or phrase
  morfo auth             Store your API key
  morfo history          Review past analyses`

const morfoShortDesc string = "Morfo - Streaming Turkish morphology tutor"

func NewMorfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "morfo",
		Short: morfoShortDesc,
		Long:  morfoLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .morfo/ config directory")

	// Add subcommands
	cmd.AddCommand(analyzecmder.NewAnalyzeCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
