package config

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/catalystcommunity/edgefn/internal/config"
	"github.com/catalystcommunity/edgefn/internal/session"
	"github.com/catalystcommunity/edgefn/internal/ui"
)

func setup(t *testing.T) (*config.Store, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	store, err := config.NewStore(filepath.Join(dir, "config.yaml"), filepath.Join(dir, "local.yaml"))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	orig := newSession
	t.Cleanup(func() { newSession = orig })
	newSession = func(*cli.Command) (*session.Session, error) {
		return &session.Session{Config: store, UI: ui.New(out), Logger: zap.NewNop()}, nil
	}
	return store, out
}

func run(args ...string) error {
	root := &cli.Command{Name: "edgefn", Commands: []*cli.Command{Command()}}
	return root.Run(context.Background(), append([]string{"edgefn", "config"}, args...))
}

func TestShow(t *testing.T) {
	store, out := setup(t)
	require.NoError(t, store.Set(config.KeyProgram, "12", false))
	require.NoError(t, store.Set(config.KeyProgramName, "Main", false))
	require.NoError(t, store.Set(config.KeyEnvironment, "34", true))

	require.NoError(t, run("show"))

	text := out.String()
	assert.Contains(t, text, "cloudmanager_programid: 12 (global)")
	assert.Contains(t, text, "cloudmanager_environmentid: 34 (local)")
	assert.Contains(t, text, "cloudmanager_orgid: (not set)")
}

func TestShowYAML(t *testing.T) {
	store, out := setup(t)
	require.NoError(t, store.Set(config.KeyOrg, "ORG@AdobeOrg", false))
	require.NoError(t, store.Set(config.KeyEdgeDelivery, true, false))

	require.NoError(t, run("show", "-o", "yaml"))

	assert.Contains(t, out.String(), "orgId: ORG@AdobeOrg\n")
	assert.Contains(t, out.String(), "edgeDelivery: true\n")
	assert.NotContains(t, out.String(), "programId")
}

func TestShowRejectsUnknownFormat(t *testing.T) {
	setup(t)
	err := run("show", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestUnset(t *testing.T) {
	store, out := setup(t)
	require.NoError(t, store.Set(config.KeyProgram, "global", false))
	require.NoError(t, store.Set(config.KeyProgram, "local", true))

	require.NoError(t, run("unset", "--local", config.KeyProgram))
	assert.Equal(t, "global", store.GetString(config.KeyProgram))
	assert.Contains(t, out.String(), "Removed cloudmanager_programid from local config")

	require.NoError(t, run("unset", config.KeyProgram))
	assert.Empty(t, store.GetString(config.KeyProgram))

	require.Error(t, run("unset"))
}
