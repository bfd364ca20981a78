package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnshRaj112/contactbook-backend/pkg/client"
)

const defaultServer = "http://localhost:8080"

// app is the state shared by every subcommand of one invocation.
type app struct {
	server      string
	sessionPath string

	client *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "contactctl",
		Short: "Manage your contactbook contacts from the terminal",
		Long: `contactctl talks to a contactbook server.

Sign in once with "contactctl login"; the token is kept in a session file
under your user config directory until you log out or it expires.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.connect,
	}

	server := os.Getenv("CONTACTBOOK_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&a.server, "server", server, "API base URL (env CONTACTBOOK_SERVER)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file (default: <config dir>/contactbook/session.yaml)")

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.contactsCmd(),
	)
	return root
}

func (a *app) connect(cmd *cobra.Command, _ []string) error {
	path := a.sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return fmt.Errorf("locate session file: %w", err)
		}
		path = p
	}

	c, err := client.New(a.server, client.NewFileTokenStore(path), nil)
	if err != nil {
		return err
	}
	if err := c.Session.Init(cmd.Context()); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	a.client = c
	return nil
}

func (a *app) requireSession() error {
	if !a.client.Session.Authenticated() {
		return errors.New(`not signed in; run "contactctl login" first`)
	}
	return nil
}

// prompt reads one line from in when value is empty.
func prompt(in io.Reader, out io.Writer, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(out, "%s: ", label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// describe turns field errors into one line per field.
func describe(err error) error {
	fields := client.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}
	var b strings.Builder
	b.WriteString("validation failed")
	for _, key := range []string{"name", "email", "phone", "password", "message"} {
		if msg, ok := fields[key]; ok {
			fmt.Fprintf(&b, "\n  %s: %s", key, msg)
		}
	}
	return errors.New(b.String())
}
