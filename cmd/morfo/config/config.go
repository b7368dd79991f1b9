// Package configcmder provides the config command for managing persistent
// morfo configuration stored in the .morfo/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent morfo configuration.

Configuration is stored as config.toml in the .morfo/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values, and MORFO_* environment variables sit between the two.

Keys use dotted notation matching the TOML section structure:
  api.endpoint, api.model,
  stream.buffer_limit, stream.idle_timeout, stream.rate_per_minute,
  history.sqlite_path

Use subcommands to get, set, or list configuration values:
  morfo config set <key> <value>    Set a configuration value
  morfo config get <key>            Get a configuration value
  morfo config list                 List all configuration values

Examples:
  morfo config set api.model gpt-4o
  morfo config set stream.idle_timeout 2m
  morfo config get api.endpoint
  morfo config list`

const configShortDesc string = "Manage persistent morfo configuration"

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
