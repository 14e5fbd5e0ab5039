package cli

import (
	"errors"

	"climbing/logbook/internal/domain"

	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if a.picker == nil {
					return errors.New("--username is required")
				}
				if username, err = a.picker.Input("Username", true); err != nil {
					return err
				}
			}
			if password == "" {
				if a.picker == nil {
					return errors.New("--password is required")
				}
				if password, err = a.picker.Password("Password"); err != nil {
					return err
				}
			}

			user, err := a.client.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := a.store.Save(user); err != nil {
				return err
			}

			a.success("Welcome back, %s!", user.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			a.success("Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			a.printf("%s (%s)\n", user.DisplayName(), user.Username)
			if user.Email != "" {
				a.printf("%s\n", user.Email)
			}
			return nil
		},
	}
}

func newRegisterCommand(a *app) *cobra.Command {
	var reg domain.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if reg.Username == "" {
				if a.picker == nil {
					return errors.New("--username is required")
				}
				if reg.Username, err = a.picker.Input("Username", true); err != nil {
					return err
				}
			}
			if reg.Password == "" {
				if a.picker == nil {
					return errors.New("--password is required")
				}
				if reg.Password, err = a.picker.Password("Password"); err != nil {
					return err
				}
			}

			if err := a.client.Register(cmd.Context(), reg); err != nil {
				return err
			}
			a.success("Registered %s, log in with `logbook login -u %s`", reg.Username, reg.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "username")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	return cmd
}
