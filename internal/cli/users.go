package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/therabot/therabot/internal/core/repository"
	"golang.org/x/term"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
	Long:  "Create and inspect Therabot accounts without going through the web pages",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		defer services.Close()

		return addUser(cmd.Context(), services, args[0], terminalPassword, cmd.OutOrStdout())
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		defer services.Close()

		return listUsers(cmd.Context(), services, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersListCmd)
}

// passwordReader prompts for a secret and returns what was typed.
type passwordReader func(prompt string) (string, error)

func terminalPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// addUser applies the same rules as the signup endpoint.
func addUser(ctx context.Context, services *Services, username string, readPassword passwordReader, out io.Writer) error {
	// Check if user already exists
	_, err := services.UserRepo.FindByUsername(ctx, username)
	if err == nil {
		return fmt.Errorf("user already exists: %s", username)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		return err
	}

	confirmPassword, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}

	if password != confirmPassword {
		return fmt.Errorf("passwords do not match")
	}

	if _, err := services.AuthService.Register(ctx, username, password); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(out, "User '%s' created successfully\n", username)
	return nil
}

func listUsers(ctx context.Context, services *Services, out io.Writer) error {
	users, err := services.AuthService.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tCHATS\tCREATED AT")
	for _, user := range users {
		chats, err := services.ChatRepo.CountByUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to count chats: %w", err)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n",
			user.ID,
			user.Username,
			chats,
			user.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

