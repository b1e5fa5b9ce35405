package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/catalystcommunity/edgefn/internal/prompt"
	"github.com/catalystcommunity/edgefn/internal/session"
)

const (
	interruptedMessage  = "\n\nSetup interrupted. No settings were changed."
	interruptedExitCode = 130
)

// Commands returns the setup command tree
func Commands() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup your AEM Edge Functions environment",
		Description: `The setup wizard selects the target of the edge function commands:
  • the IMS organization of your account
  • a Cloud Manager program
  • an environment, or an Edge Delivery site

The selection is stored globally, or in ./.edgefn.yaml when you choose to
store it locally. Nothing is stored if the wizard is interrupted.`,
		Action: runSetup,
	}
}

func runSetup(ctx context.Context, cmd *cli.Command) error {
	s, err := session.FromCommand(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	done := make(chan struct{})
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.StopSpinner()
			fmt.Fprintln(s.UI.Writer(), interruptedMessage)
			os.Exit(interruptedExitCode)
		case <-done:
			return
		}
	}()

	return interrupted(s, NewWizard(s).Run(ctx))
}

// interrupted turns a cancelled prompt into the same exit as SIGINT
func interrupted(s *session.Session, err error) error {
	if !errors.Is(err, prompt.ErrAborted) {
		return err
	}
	s.StopSpinner()
	fmt.Fprintln(s.UI.Writer(), interruptedMessage)
	return cli.Exit("", interruptedExitCode)
}
