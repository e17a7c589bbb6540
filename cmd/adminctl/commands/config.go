package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".adminctl"
	configFileName = "config.yml"
)

// Config represents the CLI configuration file.
type Config struct {
	API            string       `json:"api,omitempty"              yaml:"api,omitempty"`
	ResourcePath   string       `json:"resource_path,omitempty"    yaml:"resource_path,omitempty"`
	SortEncoding   string       `json:"sort_encoding,omitempty"    yaml:"sort_encoding,omitempty"`
	Token          string       `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time   `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string       `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	TokenURL       string       `json:"token_url,omitempty"        yaml:"token_url,omitempty"`
	Username       string       `json:"username,omitempty"         yaml:"username,omitempty"`
	Output         string       `json:"output,omitempty"           yaml:"output,omitempty"`
	LogLevel       string       `json:"log_level,omitempty"        yaml:"log_level,omitempty"`
	LogFormat      string       `json:"log_format,omitempty"       yaml:"log_format,omitempty"`
	Events         EventsConfig `json:"events"                     yaml:"events,omitempty"`
}

// EventsConfig configures publishing of user events to NATS.
type EventsConfig struct {
	URL           string `json:"url,omitempty"            yaml:"url,omitempty"`
	SubjectPrefix string `json:"subject_prefix,omitempty" yaml:"subject_prefix,omitempty"`
}

type configField struct {
	get    func(*Config) string
	set    func(*Config, string) error
	secret bool
}

func stringField(ptr func(*Config) *string) configField {
	return configField{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, value string) error {
			*ptr(c) = value

			return nil
		},
	}
}

func secretField(ptr func(*Config) *string) configField {
	field := stringField(ptr)
	field.secret = true

	return field
}

//nolint:gochecknoglobals // key table shared by config subcommands
var configFields = map[string]configField{
	"api":           stringField(func(c *Config) *string { return &c.API }),
	"resource_path": stringField(func(c *Config) *string { return &c.ResourcePath }),
	"token_url":     stringField(func(c *Config) *string { return &c.TokenURL }),
	"username":      stringField(func(c *Config) *string { return &c.Username }),
	"token":         secretField(func(c *Config) *string { return &c.Token }),
	"refresh_token": secretField(func(c *Config) *string { return &c.RefreshToken }),
	"log_format":    stringField(func(c *Config) *string { return &c.LogFormat }),
	"events.url":    stringField(func(c *Config) *string { return &c.Events.URL }),
	"events.subject_prefix": stringField(func(c *Config) *string {
		return &c.Events.SubjectPrefix
	}),
	"sort_encoding": {
		get: func(c *Config) string { return c.SortEncoding },
		set: func(c *Config, value string) error {
			_, err := adminapi.ParseSortEncoding(value)
			if err != nil {
				return fmt.Errorf("invalid sort_encoding: %w", err)
			}

			c.SortEncoding = value

			return nil
		},
	},
	"output": {
		get: func(c *Config) string { return c.Output },
		set: func(c *Config, value string) error {
			err := validateOutputFormat(value)
			if err != nil {
				return err
			}

			c.Output = value

			return nil
		},
	},
	"log_level": {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, value string) error {
			_, err := logrus.ParseLevel(value)
			if err != nil {
				return fmt.Errorf("invalid log_level: %w", err)
			}

			c.LogLevel = value

			return nil
		},
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the adminctl configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskSecrets(loadConfig())

			switch viper.GetString("output") {
			case constants.FormatJSON, constants.FormatYAML:
				return renderStructured(cmd.OutOrStdout(), viper.GetString("output"), config)
			default:
				return displayConfigTable(cmd.OutOrStdout(), config)
			}
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Long:  "Print a single configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := lookupConfigField(args[0])
			if err != nil {
				return err
			}

			value := field.get(loadConfig())
			if field.secret && value != "" {
				value = constants.MaskedSecret
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and save the configuration file",
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := lookupConfigField(args[0])
			if err != nil {
				return err
			}

			config := loadFileConfig()

			err = field.set(config, args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			display := args[1]
			if field.secret {
				display = constants.MaskedSecret
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], display)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := lookupConfigField(args[0])
			if err != nil {
				return err
			}

			config := loadFileConfig()

			_ = field.set(config, "")

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func lookupConfigField(key string) (configField, error) {
	field, ok := configFields[key]
	if !ok {
		return configField{}, fmt.Errorf("%w: %s (known keys: %s)", constants.ErrUnknownConfigKey, key,
			strings.Join(configKeys(), ", "))
	}

	return field, nil
}

func configKeys() []string {
	keys := make([]string, 0, len(configFields))
	for key := range configFields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// loadConfig returns the effective configuration: flags, then ADMIN_*
// environment variables, then the configuration file.
func loadConfig() *Config {
	config := &Config{
		API:          viper.GetString("api"),
		ResourcePath: viper.GetString("resource_path"),
		SortEncoding: viper.GetString("sort_encoding"),
		Token:        viper.GetString("token"),
		RefreshToken: viper.GetString("refresh_token"),
		TokenURL:     viper.GetString("token_url"),
		Username:     viper.GetString("username"),
		Output:       viper.GetString("output"),
		LogLevel:     viper.GetString("log_level"),
		LogFormat:    viper.GetString("log_format"),
		Events: EventsConfig{
			URL:           viper.GetString("events.url"),
			SubjectPrefix: viper.GetString("events.subject_prefix"),
		},
	}

	if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return config
}

// loadFileConfig returns the configuration file contents only, so that
// flags and environment variables are never written back to disk.
func loadFileConfig() *Config {
	config := &Config{}

	// configFilePath is built from the --config flag or the user's home directory
	// #nosec G304
	data, err := os.ReadFile(configFilePath())
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func configFilePath() string {
	if configFile := viper.GetString("config"); configFile != "" {
		return configFile
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(configDirName, configFileName)
	}

	return filepath.Join(home, configDirName, configFileName)
}

func saveConfigStruct(config *Config) error {
	configFile := configFilePath()

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return reloadConfig(configFile)
}

// initConfig points viper at the configuration file and environment.
func initConfig() error {
	viper.SetEnvPrefix("ADMIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	return reloadConfig(configFilePath())
}

func reloadConfig(configFile string) error {
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yml")

	_, err := os.Stat(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return nil
}

func maskSecrets(config *Config) *Config {
	masked := *config
	if masked.Token != "" {
		masked.Token = constants.MaskedSecret
	}

	if masked.RefreshToken != "" {
		masked.RefreshToken = constants.MaskedSecret
	}

	return &masked
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Key", "Value")

	for _, key := range configKeys() {
		value := configFields[key].get(config)
		if value == "" {
			value = constants.NotAvailable
		}

		_ = table.Append(key, value)
	}

	expiresAt := constants.NotAvailable
	if config.TokenExpiresAt != nil {
		expiresAt = config.TokenExpiresAt.Format(time.RFC3339)
	}

	_ = table.Append("token_expires_at", expiresAt)
	_ = table.Append("config_file", configFilePath())

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func validateOutputFormat(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

func renderStructured(out io.Writer, format string, value interface{}) error {
	if format == constants.FormatYAML {
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(constants.JSONIndentSize)

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
