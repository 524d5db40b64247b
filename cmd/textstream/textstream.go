// Package textstreamcmder
package textstreamcmder

import (
	"github.com/spf13/cobra"

	completecmder "github.com/papercomputeco/textstream/cmd/textstream/complete"
	configcmder "github.com/papercomputeco/textstream/cmd/textstream/config"
	decodecmder "github.com/papercomputeco/textstream/cmd/textstream/decode"
	initcmder "github.com/papercomputeco/textstream/cmd/textstream/init"
	replaycmder "github.com/papercomputeco/textstream/cmd/textstream/replay"
	versioncmder "github.com/papercomputeco/textstream/cmd/version"
)

const textstreamLongDesc string = `Textstream streams LLM completions and decodes them into text as they arrive.

Stream and decode using:
  textstream complete "Once upon a time"   Stream a completion to stdout
  textstream decode recording.sse          Decode a recorded stream offline
  textstream replay --file recording.sse   Serve a recorded stream over HTTP`

const textstreamShortDesc string = "Textstream - streaming completion decoder"

func NewTextstreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "textstream",
		Short:        textstreamShortDesc,
		Long:         textstreamLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .textstream/ config directory")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	// Add subcommands
	cmd.AddCommand(completecmder.NewCompleteCmd())
	cmd.AddCommand(decodecmder.NewDecodeCmd())
	cmd.AddCommand(replaycmder.NewReplayCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
