package main

import (
	"context"
	"fmt"
	"os"

	computecmd "github.com/catalystcommunity/edgefn/cmd/edgefn/commands/compute"
	configcmd "github.com/catalystcommunity/edgefn/cmd/edgefn/commands/config"
	contextcmd "github.com/catalystcommunity/edgefn/cmd/edgefn/commands/context"
	setupcmd "github.com/catalystcommunity/edgefn/cmd/edgefn/commands/setup"
	"github.com/catalystcommunity/edgefn/internal/session"
	"github.com/urfave/cli/v3"
)

var (
	// Version information (will be set by build flags)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	commands := []*cli.Command{setupcmd.Commands()}
	commands = append(commands, computecmd.Commands()...)
	commands = append(commands, contextcmd.Command(), configcmd.Command())

	cmd := &cli.Command{
		Name:    "edgefn",
		Usage:   "Build, deploy and debug AEM Edge Functions",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    session.ContextFlag,
				Usage:   "IMS context to authenticate with",
				Sources: cli.EnvVars("EDGEFN_CONTEXT"),
			},
			&cli.BoolFlag{
				Name:  session.DebugFlag,
				Usage: "print diagnostic logs to stderr",
			},
		},
		Commands: commands,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
