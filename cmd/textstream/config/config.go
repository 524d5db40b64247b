// Package configcmder provides the config command for managing persistent
// textstream configuration stored in the .textstream/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent textstream configuration.

Configuration is stored as config.toml in the .textstream/ directory and provides
default values for command flags. Environment variables (TEXTSTREAM_CLIENT_HOST,
TEXTSTREAM_STREAM_THROTTLE_MS, ...) override config file values and CLI flags
always take precedence over both.

Keys use dotted notation matching the TOML section structure:
  client.host, client.path, client.model, client.api_key, client.max_tokens,
  stream.throttle_ms, stream.read_size, stream.max_carry_bytes,
  replay.listen, replay.chunk_size, replay.delay_ms,
  eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  textstream config set <key> <value>    Set a configuration value
  textstream config get <key>            Get a configuration value
  textstream config list                 List all configuration values

Examples:
  textstream config set client.host http://localhost:8080
  textstream config set stream.throttle_ms 100
  textstream config get client.model
  textstream config list`

const configShortDesc string = "Manage persistent textstream configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// displayValue masks secrets before they are printed.
func displayValue(key, value string) string {
	if key != "client.api_key" || value == "" {
		return value
	}
	if len(value) <= 8 {
		return "********"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
