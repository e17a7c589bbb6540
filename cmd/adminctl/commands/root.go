package commands

import (
	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand creates the adminctl root command with every subcommand.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Admin users API CLI",
		Long: `A command-line interface for the admin users API.

Configuration is read from flags, ADMIN_* environment variables and
$HOME/.adminctl/config.yml, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.adminctl/config.yml)")
	flags.StringP("api", "a", "", "API endpoint URL")
	flags.StringP("token", "t", "", "access token")
	flags.String("resource-path", "", "users resource path (default /auth)")
	flags.String("sort-encoding", "", "sort query encoding: legacy or named")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.Bool("debug", false, "log HTTP requests and responses")
	flags.Duration("timeout", constants.DefaultHTTPTimeout, "per-request timeout")
	flags.Int("retries", 0, "retries for 5xx, 429 and connection errors")

	for key, flag := range map[string]string{
		"config":        "config",
		"api":           "api",
		"token":         "token",
		"resource_path": "resource-path",
		"sort_encoding": "sort-encoding",
		"output":        "output",
		"log_level":     "log-level",
		"log_format":    "log-format",
		"debug":         "debug",
		"timeout":       "timeout",
		"retries":       "retries",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	viper.Set("version", version)

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewUsersCommand())
	rootCmd.AddCommand(NewMockServerCommand())

	return rootCmd
}
