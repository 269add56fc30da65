package cli

import (
	"context"
	"flag"
	"fmt"
	"time"
)

func newLogoutCommand() *Command {
	return &Command{
		Name:        "logout",
		Description: "End the session and clear stored credentials",
		Flags:       flag.NewFlagSet("logout", flag.ExitOnError),
		Run:         runLogout,
	}
}

func runLogout(args []string) error {
	cmd := newLogoutCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The backend call inside is best-effort; local credentials are
	// cleared regardless.
	if err := a.controller.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("Logged out.")
	return nil
}
