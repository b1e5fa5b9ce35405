package fastly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"

	"go.uber.org/zap"

	"github.com/catalystcommunity/edgefn/internal/config"
)

const (
	// DefaultEndpoint is the compute API used when nothing else is configured
	DefaultEndpoint = "https://api-fastly.adobeaemcloud.com/"

	// TokenEnv and EndpointEnv are read when New is given empty values
	TokenEnv    = "AEM_COMPUTE_TOKEN"
	EndpointEnv = "AEM_COMPUTE_API_ENDPOINT"
	// PathEnv overrides the location of the fastly binary
	PathEnv = "EDGEFN_FASTLY_CLI"

	binaryName = "fastly"
)

var serviceIDPattern = regexp.MustCompile(`^[0-9a-zA-Z_-]+$`)

// Runner executes the fastly binary
type Runner interface {
	Run(ctx context.Context, path string, args []string, env []string) error
}

// ExecRunner runs the binary as a child process sharing the given streams
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run blocks until the child exits
func (r ExecRunner) Run(ctx context.Context, path string, args []string, env []string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = env
	return cmd.Run()
}

// CLI wraps the fastly binary with the token and endpoint it must use
type CLI struct {
	token     string
	endpoint  string
	path      string
	runner    Runner
	lookupEnv func(string) (string, bool)
	logger    *zap.Logger
}

// Option configures a CLI
type Option func(*CLI)

// WithPath pins the fastly binary
func WithPath(path string) Option {
	return func(c *CLI) {
		c.path = path
	}
}

// WithRunner replaces process execution
func WithRunner(r Runner) Option {
	return func(c *CLI) {
		c.runner = r
	}
}

// WithLookupEnv replaces os.LookupEnv
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(c *CLI) {
		c.lookupEnv = fn
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *CLI) {
		c.logger = logger
	}
}

// New creates a wrapper. An empty token or endpoint falls back to the
// environment, and the endpoint finally to DefaultEndpoint.
func New(token, endpoint string, opts ...Option) *CLI {
	c := &CLI{
		runner:    ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
		lookupEnv: os.LookupEnv,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if token == "" {
		token, _ = c.lookupEnv(TokenEnv)
	}
	if endpoint == "" {
		endpoint, _ = c.lookupEnv(EndpointEnv)
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c.token = token
	c.endpoint = endpoint
	return c
}

// Token returns the API token passed to the binary
func (c *CLI) Token() string {
	return c.token
}

// Endpoint returns the API endpoint passed to the binary
func (c *CLI) Endpoint() string {
	return c.endpoint
}

// Path resolves the fastly binary: explicit option, PathEnv, the copy
// installed in the config dir, then PATH
func (c *CLI) Path() (string, error) {
	if c.path != "" {
		return c.path, nil
	}

	if p, ok := c.lookupEnv(PathEnv); ok && p != "" {
		c.path = p
		return c.path, nil
	}

	if dir, err := config.GetConfigDir(); err == nil {
		name := binaryName
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		vendored := filepath.Join(dir, "bin", name)
		if info, err := os.Stat(vendored); err == nil && !info.IsDir() {
			c.path = vendored
			return c.path, nil
		}
	}

	p, err := exec.LookPath(binaryName)
	if err != nil {
		return "", fmt.Errorf("fastly CLI not found: install it or set %s", PathEnv)
	}
	c.path = p
	return c.path, nil
}

// Run executes the binary with args, inheriting the parent environment plus
// FASTLY_API_TOKEN and FASTLY_API_ENDPOINT
func (c *CLI) Run(ctx context.Context, args ...string) error {
	path, err := c.Path()
	if err != nil {
		return err
	}

	env := append(os.Environ(),
		"FASTLY_API_TOKEN="+c.token,
		"FASTLY_API_ENDPOINT="+c.endpoint,
	)

	c.logger.Debug("running fastly",
		zap.String("path", path),
		zap.Strings("args", args),
		zap.String("endpoint", c.endpoint))

	if err := c.runner.Run(ctx, path, args, env); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("fastly exited with status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run fastly: %w", err)
	}
	return nil
}

// EnsureTokenIsSet fails when no API token is available
func (c *CLI) EnsureTokenIsSet() error {
	if c.token == "" {
		return fmt.Errorf("%s is not set", TokenEnv)
	}
	return nil
}

// EnsureServiceIDIsSafe accepts only letters, digits, underscores and hyphens
func EnsureServiceIDIsSafe(serviceID string) error {
	if !serviceIDPattern.MatchString(serviceID) {
		return fmt.Errorf("service ID must contain only alphanumeric characters, underscores, and hyphens")
	}
	return nil
}

// Build compiles the project including its source
func (c *CLI) Build(ctx context.Context) error {
	return c.Run(ctx, "compute", "build", "--include-source")
}

// Deploy publishes the built package to serviceID
func (c *CLI) Deploy(ctx context.Context, serviceID string) error {
	if err := c.EnsureTokenIsSet(); err != nil {
		return err
	}
	if err := EnsureServiceIDIsSafe(serviceID); err != nil {
		return err
	}
	return c.Run(ctx, "compute", "deploy", "--service-id", serviceID)
}

// Serve runs the project locally
func (c *CLI) Serve(ctx context.Context) error {
	return c.Run(ctx, "compute", "serve")
}

// LogTail streams the logs of serviceID
func (c *CLI) LogTail(ctx context.Context, serviceID string) error {
	if err := c.EnsureTokenIsSet(); err != nil {
		return err
	}
	if err := EnsureServiceIDIsSafe(serviceID); err != nil {
		return err
	}
	return c.Run(ctx, "log-tail", "--service-id", serviceID)
}
