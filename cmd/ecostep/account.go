package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecostep/ecostep/internal/errs"
	"github.com/ecostep/ecostep/internal/model"
)

// readPassword returns flagValue, or the first line of stdin when fromStdin is set.
func (a *app) readPassword(flagValue string, fromStdin bool) (string, error) {
	if !fromStdin {
		return flagValue, nil
	}
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newRegisterCmd(a *app) *cobra.Command {
	var name, email, password string
	var pwStdin bool
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := a.readPassword(password, pwStdin)
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svc.Register(cmd.Context(), name, email, pw)
			if err != nil {
				return err
			}
			return printJSON(a.out, p)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&pwStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	var pwStdin bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := a.readPassword(password, pwStdin)
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svc.Authenticate(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			tr, err := a.translator(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, tr.TData("logged_in", map[string]any{"Name": p.Name, "Email": p.Email}))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&pwStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			// Resolve the language before the session is gone.
			tr, err := a.translator(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.EndSession(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, tr.T("logged_out"))
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svc.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if p == nil {
				return errs.ErrNotLoggedIn
			}
			return printJSON(a.out, p)
		},
	}
}

func newPrefsCmd(a *app) *cobra.Command {
	var dark, notify bool
	var lang string
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences of the logged-in user",
		Example: `ecostep prefs --dark-mode
  ecostep prefs --language fr --notifications=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			var patch model.PreferencesPatch
			f := cmd.Flags()
			if f.Changed("dark-mode") {
				patch.DarkMode = &dark
			}
			if f.Changed("notifications") {
				patch.Notifications = &notify
			}
			if f.Changed("language") {
				if strings.TrimSpace(lang) == "" {
					return errors.New("language must not be empty")
				}
				patch.Language = &lang
			}
			p, err := svc.UpdatePreferences(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return printJSON(a.out, p.Preferences)
		},
	}
	cmd.Flags().BoolVar(&dark, "dark-mode", false, "Enable dark mode")
	cmd.Flags().BoolVar(&notify, "notifications", false, "Enable notifications")
	cmd.Flags().StringVar(&lang, "language", "", "Interface language")
	return cmd
}
