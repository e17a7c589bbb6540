package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func outputFormat() (string, error) {
	format := viper.GetString("output")
	if format == "" {
		format = constants.FormatTable
	}

	err := validateOutputFormat(format)
	if err != nil {
		return "", err
	}

	return format, nil
}

func renderUsers(out io.Writer, format string, page *adminapi.UsersListResponse) error {
	if format != constants.FormatTable {
		return renderStructured(out, format, page)
	}

	if len(page.Data) == 0 {
		_, _ = fmt.Fprintln(out, "No users found")

		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("ID", "Email", "First Name", "Last Name", "Role", "Created")

	for _, user := range page.Data {
		_ = table.Append(
			user.ID.String(),
			valueOrNA(user.Email),
			valueOrNA(user.FirstName),
			valueOrNA(user.LastName),
			roleName(user.Role),
			formatTime(user.CreatedAt),
		)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if page.HasNextPage {
		_, _ = fmt.Fprintln(out, "More users available, use --page or --all")
	}

	return nil
}

func renderUser(out io.Writer, format string, user *adminapi.User) error {
	if format != constants.FormatTable {
		return renderStructured(out, format, user)
	}

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append("ID", user.ID.String())
	_ = table.Append("Email", valueOrNA(user.Email))
	_ = table.Append("First Name", valueOrNA(user.FirstName))
	_ = table.Append("Last Name", valueOrNA(user.LastName))
	_ = table.Append("Role", roleName(user.Role))
	_ = table.Append("Provider", valueOrNA(user.Provider))

	if user.Photo != nil {
		_ = table.Append("Photo", valueOrNA(user.Photo.Path))
	}

	_ = table.Append("Created", formatTime(user.CreatedAt))
	_ = table.Append("Updated", formatTime(user.UpdatedAt))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// roleName renders a role as "Admin" or "User", falling back to its id.
func roleName(role *adminapi.Role) string {
	if role == nil {
		return constants.NotAvailable
	}

	if role.Name != "" {
		return cases.Title(language.English).String(strings.ToLower(role.Name))
	}

	switch role.ID {
	case adminapi.RoleIDAdmin:
		return adminapi.AdminRole().Name
	case adminapi.RoleIDUser:
		return adminapi.UserRole().Name
	default:
		return "#" + strconv.Itoa(role.ID)
	}
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func formatTime(value *time.Time) string {
	if value == nil {
		return constants.NotAvailable
	}

	return value.Format(time.RFC3339)
}
