package ims

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/catalystcommunity/edgefn/internal/request"
)

const (
	// ProductionURL is the IMS host for production tokens
	ProductionURL = "https://ims-na1.adobelogin.com"
	// StageURL is the IMS host for stage tokens
	StageURL = "https://ims-na1-stg1.adobelogin.com"

	organizationsPath = "/ims/organizations/v6"
)

// Organization is an IMS organization the token's user belongs to
type Organization struct {
	Name string
	// ID is ident@authSrc
	ID string
}

type organizationResponse struct {
	OrgName string `json:"orgName"`
	OrgRef  struct {
		Ident   string `json:"ident"`
		AuthSrc string `json:"authSrc"`
	} `json:"orgRef"`
}

// Client queries IMS for data about the token's user
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL pins the IMS host instead of deriving it from the token
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an IMS client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Organizations lists the organizations of the token's user. Organizations
// sharing a display name collapse to the last one returned.
func (c *Client) Organizations(ctx context.Context, accessToken string) ([]Organization, error) {
	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = ProductionURL
		if IsStageToken(accessToken) {
			baseURL = StageURL
		}
	}

	client := request.New(baseURL, map[string]string{
		"Authorization": "Bearer " + accessToken,
		"accept":        "application/json",
	}, request.WithHTTPClient(c.httpClient), request.WithLogger(c.logger))

	resp, err := client.Get(ctx, organizationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		request.Drain(resp)
		return nil, fmt.Errorf("failed to list organizations: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var body []organizationResponse
	if err := request.DecodeJSON(resp, &body); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	index := map[string]int{}
	orgs := make([]Organization, 0, len(body))
	for _, o := range body {
		org := Organization{
			Name: o.OrgName,
			ID:   o.OrgRef.Ident + "@" + o.OrgRef.AuthSrc,
		}
		if i, ok := index[org.Name]; ok {
			orgs[i] = org
			continue
		}
		index[org.Name] = len(orgs)
		orgs = append(orgs, org)
	}
	return orgs, nil
}
