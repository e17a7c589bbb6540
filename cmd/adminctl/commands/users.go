package commands

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/internal/events"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/spf13/cobra"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
		Long:    "List, inspect, create, update and delete users of the admin API",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersCreateCommand())
	cmd.AddCommand(newUsersUpdateCommand())
	cmd.AddCommand(newUsersDeleteCommand())

	return cmd
}

// commandContext bundles what every users subcommand needs.
type commandContext struct {
	client    adminapi.Client
	logger    *LogrusLogger
	publisher events.Publisher
	format    string
}

func newCommandContext(cmd *cobra.Command, withEvents bool) (*commandContext, error) {
	format, err := outputFormat()
	if err != nil {
		return nil, err
	}

	logger, err := newCommandLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	apiClient, err := CreateClient(cmd.Context(), logger)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher = events.NopPublisher{}
	if withEvents {
		publisher = createPublisher(loadConfig(), logger)
	}

	return &commandContext{
		client:    apiClient,
		logger:    logger,
		publisher: publisher,
		format:    format,
	}, nil
}

func newUsersListCommand() *cobra.Command {
	var (
		page     int
		limit    int
		email    string
		sortFlag string
		all      bool
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  "List users one page at a time, or every page with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext(cmd, false)
			if err != nil {
				return err
			}

			request := adminapi.NewUsersListRequest(page, limit)
			if email != "" {
				request.WithEmail(email)
			}

			if sortFlag != "" {
				field, direction, err := parseSortFlag(sortFlag)
				if err != nil {
					return err
				}

				request.WithSort(field, direction)
			}

			if all {
				if !cmd.Flags().Changed("limit") {
					request.Limit = constants.StandardPageSize
				}

				users, err := adminapi.ListAll(cmd.Context(), cc.client.Users(), request, maxPages)
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}

				return renderUsers(cmd.OutOrStdout(), cc.format, &adminapi.UsersListResponse{Data: users})
			}

			result, err := cc.client.Users().List(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			return renderUsers(cmd.OutOrStdout(), cc.format, result)
		},
	}

	cmd.Flags().IntVar(&page, "page", adminapi.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", adminapi.DefaultPageSize, "users per page")
	cmd.Flags().StringVar(&email, "email", "", "filter by email")
	cmd.Flags().StringVar(&sortFlag, "sort", "", "sort by field[:asc|desc], e.g. createdAt:desc")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	cmd.Flags().IntVar(&maxPages, "max-pages", adminapi.DefaultMaxPages, "maximum pages fetched with --all")

	return cmd
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user details",
		Long:  "Display detailed information about a specific user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext(cmd, false)
			if err != nil {
				return err
			}

			user, err := cc.client.Users().Get(cmd.Context(), adminapi.ID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			return renderUser(cmd.OutOrStdout(), cc.format, user)
		},
	}
}

func newUsersCreateCommand() *cobra.Command {
	var (
		email     string
		password  string
		firstName string
		lastName  string
		role      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a user. The password is prompted for when --password is not given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return constants.ErrEmailRequired
			}

			request := &adminapi.UserCreateRequest{
				Email:     email,
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
			}

			if role != "" {
				parsed, err := parseRoleFlag(role)
				if err != nil {
					return err
				}

				request.Role = parsed
			}

			if request.Password == "" {
				entered, err := promptNewPassword(cmd)
				if err != nil {
					return err
				}

				request.Password = entered
			}

			cc, err := newCommandContext(cmd, true)
			if err != nil {
				return err
			}
			defer cc.publisher.Close()

			user, err := cc.client.Users().Create(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			publishEvent(cmd.Context(), cc.publisher, cc.logger,
				events.NewUserEvent(constants.OperationCreate, user.ID, user.Email))

			return renderUser(cmd.OutOrStdout(), cc.format, user)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&role, "role", "", "role: admin, user or a numeric id")

	return cmd
}

func newUsersUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update USER_ID",
		Short: "Update a user",
		Long:  "Update the given fields of a user; fields without a flag are left untouched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := buildUpdateRequest(cmd)
			if err != nil {
				return err
			}

			cc, err := newCommandContext(cmd, true)
			if err != nil {
				return err
			}
			defer cc.publisher.Close()

			user, err := cc.client.Users().Update(cmd.Context(), adminapi.ID(args[0]), request)
			if err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}

			publishEvent(cmd.Context(), cc.publisher, cc.logger,
				events.NewUserEvent(constants.OperationUpdate, user.ID, user.Email))

			return renderUser(cmd.OutOrStdout(), cc.format, user)
		},
	}

	cmd.Flags().String("email", "", "new email address")
	cmd.Flags().String("password", "", "new password")
	cmd.Flags().String("first-name", "", "new first name")
	cmd.Flags().String("last-name", "", "new last name")
	cmd.Flags().String("role", "", "new role: admin, user or a numeric id")

	return cmd
}

func buildUpdateRequest(cmd *cobra.Command) (*adminapi.UserUpdateRequest, error) {
	request := &adminapi.UserUpdateRequest{}
	flags := cmd.Flags()

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}

		value, _ := flags.GetString(name)

		return &value
	}

	request.Email = stringFlag("email")
	request.Password = stringFlag("password")
	request.FirstName = stringFlag("first-name")
	request.LastName = stringFlag("last-name")

	if role := stringFlag("role"); role != nil {
		parsed, err := parseRoleFlag(*role)
		if err != nil {
			return nil, err
		}

		request.Role = parsed
	}

	if request.IsEmpty() {
		return nil, constants.ErrNothingToUpdate
	}

	return request, nil
}

func newUsersDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete a user",
		Long:  "Delete a user. Asks for confirmation unless --force is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := adminapi.ID(args[0])

			if !force && !confirm(cmd, fmt.Sprintf("Really delete user %s? [y/N] ", id)) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")

				return nil
			}

			cc, err := newCommandContext(cmd, true)
			if err != nil {
				return err
			}
			defer cc.publisher.Close()

			err = cc.client.Users().Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}

			publishEvent(cmd.Context(), cc.publisher, cc.logger,
				events.NewUserEvent(constants.OperationDelete, id, ""))

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted\n", id)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

// parseSortFlag parses "field" or "field:direction".
func parseSortFlag(value string) (string, adminapi.SortDirection, error) {
	field, direction, found := strings.Cut(value, ":")
	if field == "" {
		return "", "", fmt.Errorf("%w: %q", constants.ErrInvalidSortFlag, value)
	}

	if !found {
		return field, adminapi.SortAsc, nil
	}

	switch strings.ToLower(direction) {
	case string(adminapi.SortAsc):
		return field, adminapi.SortAsc, nil
	case string(adminapi.SortDesc):
		return field, adminapi.SortDesc, nil
	default:
		return "", "", fmt.Errorf("%w: %q", constants.ErrInvalidSortFlag, value)
	}
}

// parseRoleFlag accepts "admin", "user" or a numeric role id.
func parseRoleFlag(value string) (*adminapi.Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "admin":
		return adminapi.AdminRole(), nil
	case "user":
		return adminapi.UserRole(), nil
	}

	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidRoleFlag, value)
	}

	return &adminapi.Role{ID: id}, nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), prompt)

	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}

// promptNewPassword reads a password twice from the terminal.
func promptNewPassword(cmd *cobra.Command) (string, error) {
	first, err := readPassword(cmd, "Password: ")
	if err != nil {
		return "", err
	}

	second, err := readPassword(cmd, "Repeat password: ")
	if err != nil {
		return "", err
	}

	if first != second {
		return "", constants.ErrPasswordMismatch
	}

	return first, nil
}
