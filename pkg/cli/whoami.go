package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/lodgekeep/concierge/pkg/access"
	"github.com/lodgekeep/concierge/pkg/session"
)

func newWhoamiCommand() *Command {
	cmd := &Command{
		Name:        "whoami",
		Description: "Show the current principal",
		Flags:       flag.NewFlagSet("whoami", flag.ExitOnError),
		Run:         runWhoami,
	}

	cmd.Flags.Bool("json", false, "Print the principal as JSON")

	return cmd
}

func runWhoami(args []string) error {
	cmd := newWhoamiCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	asJSON := cmd.Flags.Lookup("json").Value.String() == "true"

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.controller.Bootstrap(ctx); err != nil {
		return err
	}

	snap := a.controller.Snapshot()
	if snap.Status != session.StatusAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(snap.Principal)
	}

	p := snap.Principal
	fmt.Printf("%s <%s>\n", p.DisplayName, p.Email)
	fmt.Printf("Role: %s\n", access.DisplayNameForRole(p.Role.Name))

	categories := make([]string, 0, len(p.Permissions))
	for category := range p.Permissions {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Printf("  %s: %v\n", category, p.Permissions[category])
	}
	return nil
}
