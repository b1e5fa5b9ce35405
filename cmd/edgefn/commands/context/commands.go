package context

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/catalystcommunity/edgefn/internal/ims"
	"github.com/catalystcommunity/edgefn/internal/secrets"
	"github.com/catalystcommunity/edgefn/internal/session"
)

// newSession is replaced in tests
var newSession = session.FromCommand

// Command returns the context command tree
func Command() *cli.Command {
	return &cli.Command{
		Name:  "context",
		Usage: "Manage IMS contexts used to call Adobe APIs",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List stored contexts",
				Action:  runList,
			},
			{
				Name:      "use",
				Usage:     "Make a stored context the current one",
				ArgsUsage: "<name>",
				Action:    runUse,
			},
			{
				Name:  "login",
				Usage: "Store an IMS access token in a context",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "context to store the token in",
						Value: ims.CLIContextName,
					},
					&cli.StringFlag{
						Name:    "token",
						Usage:   "IMS access token (prompted for when not set)",
						Sources: cli.EnvVars("EDGEFN_ACCESS_TOKEN"),
					},
					&cli.StringFlag{
						Name:  "client-id",
						Usage: "API key of the integration (read from the token when not set)",
					},
					&cli.BoolFlag{
						Name:  "stage",
						Usage: "use the stage services (detected from the token when not set)",
					},
					&cli.BoolFlag{
						Name:  "local",
						Usage: "mark the context as local to this machine",
					},
				},
				Action: runLogin,
			},
			{
				Name:      "logout",
				Usage:     "Remove the access token of a context",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "forget",
						Usage: "also delete the context",
					},
				},
				Action: runLogout,
			},
		},
	}
}

func runList(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	contexts, err := s.Contexts.List()
	if err != nil {
		return fmt.Errorf("failed to list contexts: %w", err)
	}
	if len(contexts) == 0 {
		s.UI.Info("No contexts found.")
		s.UI.Info("Run 'edgefn context login' to create one.")
		return nil
	}

	current, err := s.Resolver.ContextName()
	if err != nil {
		return err
	}

	s.UI.Info("Contexts:")
	s.UI.Info("")
	for _, c := range contexts {
		marker := " "
		if c.Name == current {
			marker = "*"
		}

		details := []string{}
		if c.Data != nil && c.Data.IsStage() {
			details = append(details, "stage")
		}
		if c.Local {
			details = append(details, "local")
		}
		if c.Data == nil {
			details = append(details, "no data")
		}

		line := fmt.Sprintf("  %s %s", marker, c.Name)
		if len(details) > 0 {
			line += " (" + strings.Join(details, ", ") + ")"
		}
		s.UI.Info(line)
	}
	s.UI.Info("")
	s.UI.Muted("* = context in use")
	return nil
}

func runUse(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("missing required argument: name")
	}
	name := cmd.Args().First()

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Contexts.Use(name); err != nil {
		return err
	}
	s.UI.Success(fmt.Sprintf("✓ Using context: %s", name))
	return nil
}

func runLogin(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	name := cmd.String("name")
	token := strings.TrimSpace(cmd.String("token"))
	if token == "" {
		token, err = readToken(cmd.Root().Reader, s.UI.Writer())
		if err != nil {
			return err
		}
	}
	if token == "" {
		return fmt.Errorf("access token cannot be empty")
	}

	if _, err := ims.DecodeClaims(token); err != nil {
		return err
	}
	if ims.IsExpired(token, time.Now()) {
		return fmt.Errorf("access token has expired")
	}

	data := &ims.ContextData{ClientID: cmd.String("client-id")}
	if cmd.Bool("stage") || ims.IsStageToken(token) {
		data.Env = "stage"
	}

	if err := secrets.StoreAccessToken(name, token); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := s.Contexts.Save(&ims.Context{Name: name, Local: cmd.Bool("local"), Data: data}); err != nil {
		return err
	}
	if err := s.Contexts.Use(name); err != nil {
		return err
	}

	s.UI.Success(fmt.Sprintf("✓ Logged in to context: %s", name))
	if expiresAt, ok := ims.ExpiresAt(token); ok {
		s.UI.Muted(fmt.Sprintf("Token expires at %s", expiresAt.Local().Format(time.RFC1123)))
	}
	return nil
}

func runLogout(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	name := cmd.Args().First()
	if name == "" {
		name, err = s.Resolver.ContextName()
		if err != nil {
			return err
		}
	}

	if err := secrets.ClearAccessToken(name); err != nil {
		return fmt.Errorf("failed to remove access token: %w", err)
	}

	if cmd.Bool("forget") {
		existing, err := s.Contexts.Get(name)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.Contexts.Delete(name); err != nil {
				return err
			}
		}
	}

	s.UI.Success(fmt.Sprintf("✓ Logged out of context: %s", name))
	return nil
}

// readToken prompts for a token without echo on a terminal, or reads one line otherwise
func readToken(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "IMS access token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read access token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
