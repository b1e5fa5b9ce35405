// Package session holds the state shared by all commands of one invocation:
// stored settings, identity resolution, terminal output and prompts.
package session

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/catalystcommunity/edgefn/internal/cloudmanager"
	"github.com/catalystcommunity/edgefn/internal/config"
	"github.com/catalystcommunity/edgefn/internal/fastly"
	"github.com/catalystcommunity/edgefn/internal/ims"
	"github.com/catalystcommunity/edgefn/internal/logging"
	"github.com/catalystcommunity/edgefn/internal/prompt"
	"github.com/catalystcommunity/edgefn/internal/ui"
)

const (
	// ContextFlag names the identity context to use
	ContextFlag = "context"
	// DebugFlag enables debug logging
	DebugFlag = "debug"

	// EndpointURLEnv overrides the path appended to the compute endpoint
	EndpointURLEnv = "AEM_COMPUTE_API_ENDPOINT_URL"
	// DefaultEndpointPath is appended to the compute endpoint by default
	DefaultEndpointPath = "/adobe/experimental/compute-expires-20251231/cdn/compute/fastly"
)

// Session is created once per command invocation
type Session struct {
	Config   *config.Store
	Contexts *ims.Contexts
	Resolver *ims.Resolver
	IMS      *ims.Client
	UI       *ui.UI
	Prompt   prompt.Prompter
	Logger   *zap.Logger

	HTTPClient    *http.Client
	LookupEnv     func(string) (string, bool)
	FastlyOptions []fastly.Option

	// mu guards spinner, which signal handlers stop from another goroutine
	mu      sync.Mutex
	spinner *ui.Spinner
}

// Options selects the identity context and logging of a session
type Options struct {
	ContextName string
	Debug       bool
	In          io.Reader
	Out         io.Writer
}

// New wires a session against the user's config dir and working directory
func New(opts Options) (*Session, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	store, err := config.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	contexts, err := ims.OpenContexts()
	if err != nil {
		return nil, fmt.Errorf("failed to open contexts: %w", err)
	}

	out := ui.New(opts.Out)
	logger := logging.New(opts.Debug)
	httpClient := &http.Client{}

	return &Session{
		Config:     store,
		Contexts:   contexts,
		Resolver:   ims.NewResolver(contexts, out, opts.ContextName),
		IMS:        ims.NewClient(ims.WithHTTPClient(httpClient), ims.WithLogger(logger)),
		UI:         out,
		Prompt:     prompt.NewTerminal(opts.In, opts.Out),
		Logger:     logger,
		HTTPClient: httpClient,
		LookupEnv:  os.LookupEnv,
		FastlyOptions: []fastly.Option{
			fastly.WithLogger(logger),
		},
	}, nil
}

// FromCommand creates a session from the global flags of cmd
func FromCommand(cmd *cli.Command) (*Session, error) {
	return New(Options{
		ContextName: cmd.String(ContextFlag),
		Debug:       cmd.Bool(DebugFlag),
		Out:         cmd.Root().Writer,
		In:          cmd.Root().Reader,
	})
}

// Close stops any running spinner and flushes the logger
func (s *Session) Close() {
	s.StopSpinner()
	_ = s.Logger.Sync()
}

// StartSpinner replaces the current spinner with one showing message
func (s *Session) StartSpinner(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSpinnerLocked()
	s.spinner = s.UI.StartSpinner(message)
}

// StopSpinner stops the current spinner, if any. Safe to call from any goroutine.
func (s *Session) StopSpinner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSpinnerLocked()
}

func (s *Session) stopSpinnerLocked() {
	if s.spinner != nil {
		s.spinner.Stop()
		s.spinner = nil
	}
}

// TokenAndKey resolves credentials of the session's identity context
func (s *Session) TokenAndKey() (*ims.Credentials, error) {
	return s.Resolver.TokenAndKey()
}

// OrgID returns selected, else the stored organization, else the console
// organization written by other tooling
func (s *Session) OrgID(selected string) (string, error) {
	if selected != "" {
		return selected, nil
	}
	if id := s.Config.GetString(config.KeyOrg); id != "" {
		return id, nil
	}
	if id := s.Config.GetString(config.KeyConsoleOrg); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("organization ID is not set, please run the setup command to set it")
}

// CloudManager creates an API client for orgID using creds
func (s *Session) CloudManager(creds *ims.Credentials, orgID string) *cloudmanager.Client {
	return cloudmanager.New(
		cloudmanager.BaseURL(creds.Data.IsStage()),
		creds.APIKey,
		orgID,
		creds.AccessToken,
		cloudmanager.WithHTTPClient(s.HTTPClient),
		cloudmanager.WithLogger(s.Logger),
	)
}

// ComputeEndpoint returns the compute API endpoint of the stored selection
func (s *Session) ComputeEndpoint() string {
	endpoint, _ := s.LookupEnv(fastly.EndpointEnv)
	if endpoint == "" {
		sel := s.Config.Selection()
		if sel.EdgeDelivery {
			endpoint = "https://" + sel.EnvironmentName
		} else {
			endpoint = fmt.Sprintf("https://publish-p%s-e%s.adobeaemcloud.com", sel.ProgramID, sel.EnvironmentID)
		}
	}

	if suffix, ok := s.LookupEnv(EndpointURLEnv); ok {
		return endpoint + suffix
	}
	return endpoint + DefaultEndpointPath
}

// FastlyCLI creates the deploy wrapper for the stored selection. The compute
// token comes from AEM_COMPUTE_TOKEN when set, else from the identity context.
func (s *Session) FastlyCLI() (*fastly.CLI, error) {
	endpoint := s.ComputeEndpoint()

	token, ok := s.LookupEnv(fastly.TokenEnv)
	if !ok {
		creds, err := s.TokenAndKey()
		if err != nil {
			return nil, err
		}
		token = creds.AccessToken
	}

	s.Logger.Debug("compute endpoint", zap.String("endpoint", endpoint))

	opts := append([]fastly.Option{fastly.WithLookupEnv(s.LookupEnv)}, s.FastlyOptions...)
	return fastly.New(token, endpoint, opts...), nil
}
