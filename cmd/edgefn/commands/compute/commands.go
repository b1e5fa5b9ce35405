package compute

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/catalystcommunity/edgefn/internal/fastly"
	"github.com/catalystcommunity/edgefn/internal/session"
)

// Commands returns the top-level commands that drive the fastly CLI
func Commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "deploy",
			Usage:     "Deploy your code to your AEM edge function",
			ArgsUsage: "<serviceId>",
			Action: withServiceID(func(ctx context.Context, f *fastly.CLI, serviceID string) error {
				return f.Deploy(ctx, serviceID)
			}),
		},
		{
			Name:  "build",
			Usage: "Build your edge function locally",
			Action: withFastly(func(ctx context.Context, f *fastly.CLI) error {
				return f.Build(ctx)
			}),
		},
		{
			Name:  "serve",
			Usage: "Run your edge function on a local development server",
			Action: withFastly(func(ctx context.Context, f *fastly.CLI) error {
				return f.Serve(ctx)
			}),
		},
		{
			Name:      "tail-logs",
			Usage:     "Stream the logs of your AEM edge function",
			ArgsUsage: "<serviceId>",
			Action: withServiceID(func(ctx context.Context, f *fastly.CLI, serviceID string) error {
				return f.LogTail(ctx, serviceID)
			}),
		},
	}
}

// newSession is replaced in tests
var newSession = session.FromCommand

func withFastly(action func(ctx context.Context, f *fastly.CLI) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		f, err := s.FastlyCLI()
		if err != nil {
			return err
		}
		return action(ctx, f)
	}
}

func withServiceID(action func(ctx context.Context, f *fastly.CLI, serviceID string) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() < 1 {
			return fmt.Errorf("missing required argument: serviceId (AEM Edge Function name, e.g. my-service)")
		}
		serviceID := cmd.Args().First()

		return withFastly(func(ctx context.Context, f *fastly.CLI) error {
			return action(ctx, f, serviceID)
		})(ctx, cmd)
	}
}
