package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/adminapi-client/internal/auth"
	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
		tokenURL string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the admin API",
		Long:  "Obtain a token with the OAuth2 password grant and save it to the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.API == "" {
				return constants.ErrNoAPIEndpointConfigured
			}

			if username == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Email: ")

				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				username = strings.TrimSpace(line)
			}

			if password == "" {
				entered, err := promptPassword(cmd)
				if err != nil {
					return err
				}

				password = entered
			}

			if tokenURL != "" {
				config.TokenURL = tokenURL
			}

			resolvedTokenURL := resolveTokenURL(config)

			manager := auth.NewOAuth2TokenManager(&auth.OAuth2Config{
				TokenURL: resolvedTokenURL,
				Username: username,
				Password: password,
			})

			_, err := manager.GetToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to log in: %w", err)
			}

			token := manager.Token()

			fileConfig := loadFileConfig()
			if fileConfig.API == "" {
				fileConfig.API = config.API
			}

			fileConfig.Username = username
			fileConfig.TokenURL = config.TokenURL
			fileConfig.Token = token.AccessToken
			fileConfig.RefreshToken = token.RefreshToken
			fileConfig.TokenExpiresAt = nil

			if !token.ExpiresAt.IsZero() {
				expiresAt := token.ExpiresAt
				fileConfig.TokenExpiresAt = &expiresAt
			}

			err = saveConfigStruct(fileConfig)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "email to log in with")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "OAuth2 token endpoint (default <api>/oauth/token)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the admin API",
		Long:  "Remove saved tokens from the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadFileConfig()
			config.Token = ""
			config.RefreshToken = ""
			config.TokenExpiresAt = nil

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}

func promptPassword(cmd *cobra.Command) (string, error) {
	return readPassword(cmd, "Password: ")
}

// readPassword reads a password from the terminal without echo.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int

	if !term.IsTerminal(fd) {
		return "", constants.ErrPasswordNotEntered
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), prompt)

	password, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	if len(password) == 0 {
		return "", constants.ErrPasswordNotEntered
	}

	return string(password), nil
}
