package ims

import (
	"errors"
	"fmt"
	"time"

	"github.com/catalystcommunity/edgefn/internal/secrets"
)

const (
	// DefaultContextName is used when neither a flag nor a current context names one.
	// It is deprecated in favour of CLIContextName.
	DefaultContextName = "aio-cli-plugin-cloudmanager"
	// CLIContextName is the context written by an interactive login
	CLIContextName = "cli"

	deprecatedContextDocs = "https://experienceleague.adobe.com/en/docs/experience-manager-cloud-service/content/implementing/developing/rapid-development-environments#aio-rde-plugin-troubleshooting-deprecatedcontext"
)

// ErrContextNotConfigured is returned when no usable identity context exists
var ErrContextNotConfigured = errors.New("IMS context is not configured")

// Credentials are the resolved bearer token and API key of a context
type Credentials struct {
	ContextName string
	AccessToken string
	APIKey      string
	Local       bool
	Data        ContextData
}

// TokenStore loads the access token of a context
type TokenStore interface {
	LoadAccessToken(contextName string) (string, error)
}

// Reporter receives user-facing notices emitted while resolving
type Reporter interface {
	Warn(msg string)
	Error(msg string)
}

type keyringTokens struct{}

func (keyringTokens) LoadAccessToken(contextName string) (string, error) {
	return secrets.LoadAccessToken(contextName)
}

// Resolver turns a context name into credentials
type Resolver struct {
	contexts    *Contexts
	tokens      TokenStore
	reporter    Reporter
	contextName string
	now         func() time.Time
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithTokenStore replaces the keyring-backed token store
func WithTokenStore(tokens TokenStore) ResolverOption {
	return func(r *Resolver) {
		r.tokens = tokens
	}
}

// WithClock replaces time.Now for expiry checks
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a resolver. contextName is the explicitly requested
// context and may be empty.
func NewResolver(contexts *Contexts, reporter Reporter, contextName string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		contexts:    contexts,
		tokens:      keyringTokens{},
		reporter:    reporter,
		contextName: contextName,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ContextName returns the context that would be consulted first:
// explicit flag, then current context, then the default name
func (r *Resolver) ContextName() (string, error) {
	if r.contextName != "" {
		return r.contextName, nil
	}
	current, err := r.contexts.Current()
	if err != nil {
		return "", err
	}
	if current != "" {
		return current, nil
	}
	return DefaultContextName, nil
}

// TokenAndKey resolves the access token and API key of the effective context
func (r *Resolver) TokenAndKey() (*Credentials, error) {
	name, err := r.ContextName()
	if err != nil {
		return nil, err
	}

	ctx, err := r.contexts.Get(name)
	if err != nil {
		return nil, err
	}

	if ctx == nil || ctx.Data == nil {
		if name != DefaultContextName {
			r.reporter.Error(fmt.Sprintf("\nConfigured default context '%s' not found.", name))
			return nil, fmt.Errorf("no valid IMS context found, please set a valid context using 'edgefn context use'")
		}
		name = CLIContextName
		ctx, err = r.contexts.Get(name)
		if err != nil {
			return nil, err
		}
	}

	if ctx == nil || ctx.Data == nil {
		return nil, fmt.Errorf("%w: context has no data: %s", ErrContextNotConfigured, name)
	}

	if name == DefaultContextName {
		r.reporter.Warn(fmt.Sprintf("\nUsing deprecated context '%s'. Refer to the documentation to update your context: %s", name, deprecatedContextDocs))
	}

	accessToken, err := r.tokens.LoadAccessToken(name)
	if err != nil {
		if errors.Is(err, secrets.ErrTokenNotFound) {
			return nil, fmt.Errorf("%w: no access token stored for context: %s", ErrContextNotConfigured, name)
		}
		return nil, fmt.Errorf("failed to load access token for context %s: %w", name, err)
	}
	if IsExpired(accessToken, r.now()) {
		return nil, fmt.Errorf("access token for context %s has expired, please run 'edgefn context login'", name)
	}

	apiKey := ctx.Data.ClientID
	if apiKey == "" {
		clientID, err := ClientIDFromToken(accessToken)
		if err != nil {
			return nil, fmt.Errorf("cannot decode access token for context: %s", name)
		}
		if clientID == "" {
			return nil, fmt.Errorf("no client_id found in access token for context: %s", name)
		}
		apiKey = clientID
	}

	return &Credentials{
		ContextName: name,
		AccessToken: accessToken,
		APIKey:      apiKey,
		Local:       ctx.Local,
		Data:        *ctx.Data,
	}, nil
}
