package config

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"sigs.k8s.io/yaml"

	"github.com/catalystcommunity/edgefn/internal/config"
	"github.com/catalystcommunity/edgefn/internal/session"
)

// newSession is replaced in tests
var newSession = session.FromCommand

// Command returns the config command tree
func Command() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the stored Cloud Manager selection",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Display the selected organization, program and environment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output format (text, yaml)",
						Value:   "text",
					},
				},
				Action: runShow,
			},
			{
				Name:      "unset",
				Usage:     "Remove a stored setting",
				ArgsUsage: "<key>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "local",
						Usage: "remove the key from the local config file",
					},
				},
				Action: runUnset,
			},
		},
	}
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	switch cmd.String("output") {
	case "yaml":
		data, err := yaml.Marshal(s.Config.Selection())
		if err != nil {
			return fmt.Errorf("failed to marshal selection: %w", err)
		}
		fmt.Fprint(s.UI.Writer(), string(data))
		return nil
	case "text":
	default:
		return fmt.Errorf("unsupported output format: %s", cmd.String("output"))
	}

	s.UI.Info(fmt.Sprintf("Global config: %s", s.Config.GlobalPath()))
	s.UI.Info(fmt.Sprintf("Local config:  %s", s.Config.LocalPath()))
	s.UI.Info("")
	for _, key := range config.SelectionKeys {
		value := s.Config.GetString(key)
		if value == "" {
			s.UI.Muted(fmt.Sprintf("  %s: (not set)", key))
			continue
		}
		s.UI.Info(fmt.Sprintf("  %s: %s (%s)", key, value, source(s.Config, key)))
	}
	return nil
}

func source(store *config.Store, key string) string {
	switch {
	case store.GetLocal(key) != nil && fmt.Sprint(store.GetLocal(key)) == store.GetString(key):
		return "local"
	case store.GetGlobal(key) != nil && fmt.Sprint(store.GetGlobal(key)) == store.GetString(key):
		return "global"
	default:
		return "env"
	}
}

func runUnset(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("missing required argument: key")
	}
	key := cmd.Args().First()

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	local := cmd.Bool("local")
	if err := s.Config.Unset(key, local); err != nil {
		return fmt.Errorf("failed to unset %s: %w", key, err)
	}

	scope := "global"
	if local {
		scope = "local"
	}
	s.UI.Success(fmt.Sprintf("✓ Removed %s from %s config", key, scope))
	return nil
}
