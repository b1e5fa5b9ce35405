package ims

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalystcommunity/edgefn/internal/secrets"
)

type fakeTokens map[string]string

func (f fakeTokens) LoadAccessToken(name string) (string, error) {
	token, ok := f[name]
	if !ok {
		return "", secrets.ErrTokenNotFound
	}
	return token, nil
}

type failingTokens struct{}

func (failingTokens) LoadAccessToken(string) (string, error) {
	return "", errors.New("keyring locked")
}

type recordingReporter struct {
	warnings []string
	errors   []string
}

func (r *recordingReporter) Warn(msg string)  { r.warnings = append(r.warnings, msg) }
func (r *recordingReporter) Error(msg string) { r.errors = append(r.errors, msg) }

func TestResolverTokenAndKey(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	valid := signToken(t, jwt.MapClaims{"client_id": "from-token", "exp": now.Add(time.Hour).Unix()})
	noClient := signToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	expired := signToken(t, jwt.MapClaims{"client_id": "x", "exp": now.Add(-time.Hour).Unix()})

	tests := []struct {
		name        string
		flag        string
		current     string
		contexts    []*Context
		tokens      TokenStore
		want        *Credentials
		wantErr     string
		wantErrIs   error
		wantWarning bool
		wantRed     string
	}{
		{
			name:     "explicit context with client id in data",
			flag:     "work",
			contexts: []*Context{{Name: "work", Data: &ContextData{ClientID: "data-client"}}},
			tokens:   fakeTokens{"work": valid},
			want:     &Credentials{ContextName: "work", AccessToken: valid, APIKey: "data-client", Data: ContextData{ClientID: "data-client"}},
		},
		{
			name:     "current context with client id from token",
			current:  "work",
			contexts: []*Context{{Name: "work", Local: true, Data: &ContextData{}}},
			tokens:   fakeTokens{"work": valid},
			want:     &Credentials{ContextName: "work", AccessToken: valid, APIKey: "from-token", Local: true},
		},
		{
			name:     "named context missing",
			flag:     "nope",
			tokens:   fakeTokens{},
			wantErr:  "no valid IMS context found",
			wantRed:  "Configured default context 'nope' not found.",
			contexts: []*Context{{Name: "cli", Data: &ContextData{}}},
		},
		{
			name:        "default context is deprecated",
			contexts:    []*Context{{Name: DefaultContextName, Data: &ContextData{ClientID: "legacy"}}},
			tokens:      fakeTokens{DefaultContextName: valid},
			want:        &Credentials{ContextName: DefaultContextName, AccessToken: valid, APIKey: "legacy", Data: ContextData{ClientID: "legacy"}},
			wantWarning: true,
		},
		{
			name:     "default falls back to cli",
			contexts: []*Context{{Name: CLIContextName, Data: &ContextData{}}},
			tokens:   fakeTokens{CLIContextName: valid},
			want:     &Credentials{ContextName: CLIContextName, AccessToken: valid, APIKey: "from-token"},
		},
		{
			name:      "nothing configured",
			tokens:    fakeTokens{},
			wantErrIs: ErrContextNotConfigured,
		},
		{
			name:      "context without data",
			contexts:  []*Context{{Name: CLIContextName}},
			tokens:    fakeTokens{CLIContextName: valid},
			wantErrIs: ErrContextNotConfigured,
		},
		{
			name:      "missing token",
			contexts:  []*Context{{Name: CLIContextName, Data: &ContextData{}}},
			tokens:    fakeTokens{},
			wantErrIs: ErrContextNotConfigured,
		},
		{
			name:     "token store failure",
			contexts: []*Context{{Name: CLIContextName, Data: &ContextData{}}},
			tokens:   failingTokens{},
			wantErr:  "keyring locked",
		},
		{
			name:     "expired token",
			contexts: []*Context{{Name: CLIContextName, Data: &ContextData{ClientID: "c"}}},
			tokens:   fakeTokens{CLIContextName: expired},
			wantErr:  "has expired",
		},
		{
			name:     "token without client id",
			contexts: []*Context{{Name: CLIContextName, Data: &ContextData{}}},
			tokens:   fakeTokens{CLIContextName: noClient},
			wantErr:  "no client_id found in access token for context: cli",
		},
		{
			name:     "undecodable token",
			contexts: []*Context{{Name: CLIContextName, Data: &ContextData{}}},
			tokens:   fakeTokens{CLIContextName: "garbage"},
			wantErr:  "cannot decode access token for context: cli",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contexts := NewContexts(filepath.Join(t.TempDir(), ContextsFileName))
			for _, c := range tt.contexts {
				require.NoError(t, contexts.Save(c))
			}
			if tt.current != "" {
				require.NoError(t, contexts.Use(tt.current))
			}

			reporter := &recordingReporter{}
			resolver := NewResolver(contexts, reporter, tt.flag,
				WithTokenStore(tt.tokens),
				WithClock(func() time.Time { return now }))

			creds, err := resolver.TokenAndKey()
			if tt.wantErr != "" || tt.wantErrIs != nil {
				require.Error(t, err)
				if tt.wantErr != "" {
					assert.Contains(t, err.Error(), tt.wantErr)
				}
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				if tt.wantRed != "" {
					require.Len(t, reporter.errors, 1)
					assert.Contains(t, reporter.errors[0], tt.wantRed)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, creds)
			if tt.wantWarning {
				require.Len(t, reporter.warnings, 1)
				assert.Contains(t, reporter.warnings[0], "Using deprecated context")
			} else {
				assert.Empty(t, reporter.warnings)
			}
		})
	}
}

func TestResolverContextName(t *testing.T) {
	contexts := NewContexts(filepath.Join(t.TempDir(), ContextsFileName))
	reporter := &recordingReporter{}

	name, err := NewResolver(contexts, reporter, "").ContextName()
	require.NoError(t, err)
	assert.Equal(t, DefaultContextName, name)

	require.NoError(t, contexts.Save(&Context{Name: "work", Data: &ContextData{}}))
	require.NoError(t, contexts.Use("work"))

	name, err = NewResolver(contexts, reporter, "").ContextName()
	require.NoError(t, err)
	assert.Equal(t, "work", name)

	name, err = NewResolver(contexts, reporter, "flagged").ContextName()
	require.NoError(t, err)
	assert.Equal(t, "flagged", name)
}
