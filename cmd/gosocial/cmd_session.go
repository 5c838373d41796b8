package main

import (
	"errors"
	"fmt"
	"time"

	goSocial "github.com/MrEthical07/goSocial"
	"github.com/MrEthical07/goSocial/api"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and remember the session",
		Long: `Log in with a username and password. The password is read from stdin
unless --password is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.readSecret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			id, err := client.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", id.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register [username] [email]",
		Short: "Create an account and log in",
		Long: `Create an account. Without --password the password and its confirmation
are read from consecutive stdin lines.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.readSecret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			confirm := pw
			if password == "" {
				if confirm, err = a.readSecret(cmd, "", "Confirm password: "); err != nil {
					return err
				}
			}

			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			id, err := client.Register(cmd.Context(), api.RegisterInput{
				Username:        args[0],
				Email:           args[1],
				Password:        pw,
				ConfirmPassword: confirm,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", id.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			id, err := client.Whoami()
			if errors.Is(err, goSocial.ErrNotAuthenticated) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s", id.Username)
			if id.Email != "" {
				fmt.Fprintf(out, " <%s>", id.Email)
			}
			fmt.Fprintln(out)
			if !id.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "session expires %s\n", id.ExpiresAt.Local().Format(time.RFC1123))
			}
			fmt.Fprintf(out, "storage: %s\n", client.StorageBackend())
			return nil
		},
	}
}
