package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"fieldbook/services/portal/internal/models"
	"fieldbook/services/portal/internal/session"
)

func newLoginCommand(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := rt.secret(password, "password")
			if err != nil {
				return err
			}
			if !rt.app.Session.Login(cmd.Context(), email, pw) {
				return errors.New(rt.app.Session.Err())
			}
			user, _ := rt.app.Session.User()
			return rt.print(user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSignupCommand(rt *runtime) *cobra.Command {
	var email, username, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account (log in afterwards)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := rt.secret(password, "password")
			if err != nil {
				return err
			}
			if !rt.app.Session.Signup(cmd.Context(), email, pw, username) {
				return errors.New(rt.app.Session.Err())
			}
			user, _ := rt.app.Session.Registered()
			return rt.print(user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt.app.Session.Logout(cmd.Context())
			return rt.print(models.Message{Message: "logged out"})
		},
	}
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !remote {
				user, ok := rt.app.Session.User()
				if !ok {
					return errNotLoggedIn
				}
				return rt.print(user)
			}
			token, err := rt.token()
			if err != nil {
				return err
			}
			user, err := rt.app.Client.Auth.CurrentUser(cmd.Context(), token)
			if err != nil {
				return err
			}
			return rt.print(user)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the auth service instead of the persisted session")
	return cmd
}

func newHealthCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the backend gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.print(rt.app.Client.Health(cmd.Context()))
		},
	}
}

func newProfileCommand(rt *runtime) *cobra.Command {
	profile := &cobra.Command{Use: "profile", Short: "Manage your profile"}

	var username string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := rt.token()
			if err != nil {
				return err
			}
			user, err := rt.app.Client.Auth.UpdateProfile(cmd.Context(), models.UserUpdateRequest{Username: &username}, token)
			if err != nil {
				return err
			}
			rt.app.Session.UpdateUser(cmd.Context(), session.UserPatch{Username: &user.Username})
			return rt.print(user)
		},
	}
	update.Flags().StringVar(&username, "username", "", "new username")
	_ = update.MarkFlagRequired("username")

	profile.AddCommand(update)
	return profile
}

func newPasswordCommand(rt *runtime) *cobra.Command {
	password := &cobra.Command{Use: "password", Short: "Recover or change your password"}

	var email string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Send a password recovery e-mail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !rt.app.Session.ResetPassword(cmd.Context(), email) {
				return errors.New(rt.app.Session.Err())
			}
			return rt.print(models.Message{Message: "recovery e-mail sent"})
		},
	}
	reset.Flags().StringVar(&email, "email", "", "account e-mail")
	_ = reset.MarkFlagRequired("email")

	var current, next string
	change := &cobra.Command{
		Use:   "change",
		Short: "Set a new password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !rt.app.Session.ChangePassword(cmd.Context(), current, next) {
				return errors.New(rt.app.Session.Err())
			}
			return rt.print(models.Message{Message: "password changed"})
		},
	}
	change.Flags().StringVar(&current, "current", "", "current password")
	change.Flags().StringVar(&next, "new", "", "new password")
	_ = change.MarkFlagRequired("new")

	password.AddCommand(reset, change)
	return password
}
