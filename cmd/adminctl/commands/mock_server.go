package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/internal/fakeapi"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const defaultMockListen = "127.0.0.1:3000"

// NewMockServerCommand creates the mock-server command.
func NewMockServerCommand() *cobra.Command {
	var (
		listen        string
		token         string
		resourcePath  string
		useUUIDs      bool
		adminEmail    string
		adminPassword string
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory users API",
		Long:  "Serve an in-memory implementation of the users API for local development until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newCommandLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)

			opts := []fakeapi.Option{
				fakeapi.WithResourcePath(resourcePath),
				fakeapi.WithLogger(logger),
			}

			if token != "" {
				opts = append(opts, fakeapi.WithToken(token))
			}

			if useUUIDs {
				opts = append(opts, fakeapi.WithUUIDs())
			}

			server := fakeapi.New(opts...)

			if adminEmail != "" {
				_, err = server.Seed(&adminapi.UserCreateRequest{
					Email:     adminEmail,
					Password:  adminPassword,
					FirstName: "Super",
					LastName:  "Admin",
					Role:      adminapi.AdminRole(),
				})
				if err != nil {
					return fmt.Errorf("failed to seed admin user: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("Mock API listening", map[string]interface{}{
				"address":       listen,
				"resource_path": resourcePath,
			})

			return server.Run(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", defaultMockListen, "address to listen on")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token and issue it from the token endpoint")
	cmd.Flags().StringVar(&resourcePath, "resource-path", constants.DefaultResourcePath, "users resource path")
	cmd.Flags().BoolVar(&useUUIDs, "uuid", false, "assign UUID ids instead of numbers")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "seed an admin user with this email (empty to skip)")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "secret", "password of the seeded admin user")

	return cmd
}
