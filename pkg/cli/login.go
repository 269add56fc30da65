package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/lodgekeep/concierge/pkg/access"
	"github.com/lodgekeep/concierge/pkg/authapi"
)

func newLoginCommand() *Command {
	cmd := &Command{
		Name:        "login",
		Description: "Log in to the backend and persist the session",
		Flags:       flag.NewFlagSet("login", flag.ExitOnError),
		Run:         runLogin,
	}

	cmd.Flags.String("email", "", "Account email")
	cmd.Flags.String("password", "", "Account password")

	return cmd
}

func runLogin(args []string) error {
	cmd := newLoginCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	email := cmd.Flags.Lookup("email").Value.String()
	password := cmd.Flags.Lookup("password").Value.String()
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.controller.Login(ctx, email, password); err != nil {
		var apiErr *authapi.APIError
		if errors.As(err, &apiErr) {
			// Surface the backend's message verbatim.
			return fmt.Errorf("login rejected: %s", apiErr.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	snap := a.controller.Snapshot()
	fmt.Printf("Logged in as %s (%s)\n",
		snap.Principal.DisplayName,
		access.DisplayNameForRole(snap.Principal.Role.Name),
	)
	return nil
}
