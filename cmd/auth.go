package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/identity"
)

type sessionJSON struct {
	UserID    string `json:"userId,omitempty"`
	SignedIn  bool   `json:"signedIn"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

var loginCmd = &cobra.Command{
	Use:     "login USER",
	Short:   "Sign in on this device as USER",
	Example: `  flowr login alice`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in user on this device",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	userID := strings.TrimSpace(args[0])

	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	expires, err := a.session.SignIn(a.context(cmd.Context()), userID)
	if err != nil {
		if errors.Is(err, identity.ErrEmptyUserID) {
			return invalidArgsError("user id must not be blank", "flowr login alice")
		}
		return upstreamError("opening state store", err)
	}

	if flagJSON {
		return printJSON(cmd, sessionJSON{UserID: userID, SignedIn: true, ExpiresAt: expires.UTC().Format(time.RFC3339)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s until %s.\n", userID, expires.Local().Format("Jan 2, 2006 15:04"))
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.SignOut(a.context(cmd.Context())); err != nil {
		return upstreamError("opening state store", err)
	}

	if flagJSON {
		return printJSON(cmd, sessionJSON{SignedIn: false})
	}
	display.PrintNotice(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	claims, err := a.session.Claims(a.context(cmd.Context()))
	if err != nil || claims.Subject == "" {
		return unauthenticatedError("no signed-in user")
	}

	out := sessionJSON{UserID: claims.Subject, SignedIn: true}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if flagJSON {
		return printJSON(cmd, out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (session expires %s)\n", out.UserID, emptyIf(out.ExpiresAt, "never"))
	return nil
}
