package cloudmanager

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/catalystcommunity/edgefn/internal/request"
)

const (
	// ProductionURL is the Cloud Manager API host
	ProductionURL = "https://cloudmanager.adobe.io"
	// StageURL is the Cloud Manager stage API host
	StageURL = "https://cloudmanager-stage.adobe.io"
	// APIPath is appended to the host to form the API base URL
	APIPath = "/api"
)

// BaseURL returns the API base URL for the production or stage service
func BaseURL(stage bool) string {
	if stage {
		return StageURL + APIPath
	}
	return ProductionURL + APIPath
}

// Client lists the programs, environments and sites visible to an organization.
// Non-200 responses are logged and reported as a nil result.
type Client struct {
	http   *request.Client
	logger *zap.Logger
}

// Option configures a Client
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// WithHTTPClient sets the HTTP client used for API calls
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger sets the logger used for failed calls
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Cloud Manager API client
func New(baseURL, apiKey, orgID, accessToken string, opts ...Option) *Client {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	headers := map[string]string{
		"Authorization":   "Bearer " + accessToken,
		"accept":          "application/json",
		"x-api-key":       apiKey,
		"x-gw-ims-org-id": orgID,
	}

	reqOpts := []request.Option{request.WithLogger(o.logger)}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, request.WithHTTPClient(o.httpClient))
	}

	return &Client{
		http:   request.New(baseURL, headers, reqOpts...),
		logger: o.logger,
	}
}

// ListPrograms returns the id and name of every program
func (c *Client) ListPrograms(ctx context.Context) ([]Program, error) {
	var body programsResponse
	ok, err := c.get(ctx, "/programs", "programs", &body)
	if err != nil || !ok {
		return nil, err
	}

	programs := make([]Program, 0, len(body.Embedded.Programs))
	for _, p := range body.Embedded.Programs {
		programs = append(programs, Program{ID: string(p.ID), Name: p.Name})
	}
	return programs, nil
}

// ListEnvironments returns the environments of a program
func (c *Client) ListEnvironments(ctx context.Context, programID string) ([]Environment, error) {
	if programID == "" {
		return nil, nil
	}

	var body environmentsResponse
	path := fmt.Sprintf("/program/%s/environments", url.PathEscape(programID))
	ok, err := c.get(ctx, path, "environments", &body)
	if err != nil || !ok {
		return nil, err
	}

	environments := make([]Environment, 0, len(body.Embedded.Environments))
	for _, e := range body.Embedded.Environments {
		environments = append(environments, Environment{
			ID:     string(e.ID),
			Name:   e.Name,
			Type:   e.Type,
			Status: e.Status,
		})
	}
	return environments, nil
}

// ListSites returns the Edge Delivery domain mappings of a program
func (c *Client) ListSites(ctx context.Context, programID string) ([]Site, error) {
	if programID == "" {
		return nil, nil
	}

	var body domainMappingsResponse
	path := fmt.Sprintf("/program/%s/domain-mappings", url.PathEscape(programID))
	ok, err := c.get(ctx, path, "sites", &body)
	if err != nil || !ok {
		return nil, err
	}

	sites := make([]Site, 0, len(body.DomainMappings))
	for _, m := range body.DomainMappings {
		sites = append(sites, Site{ID: string(m.DomainMappingID), Name: m.DomainName})
	}
	return sites, nil
}

// get returns false without error when the API answered with a non-200 status
func (c *Client) get(ctx context.Context, path, what string, result any) (bool, error) {
	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to list %s: %w", what, err)
	}

	if resp.StatusCode != http.StatusOK {
		request.Drain(resp)
		c.logger.Warn(fmt.Sprintf("Failed to list %s", what),
			zap.Int("status", resp.StatusCode),
			zap.String("statusText", http.StatusText(resp.StatusCode)),
		)
		return false, nil
	}

	if err := request.DecodeJSON(resp, result); err != nil {
		return false, fmt.Errorf("failed to list %s: %w", what, err)
	}
	return true, nil
}
