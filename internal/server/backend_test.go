package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/weekplanner/internal/config"
)

func TestNewBackendFactory_Graph(t *testing.T) {
	cfg := testConfig()
	cfg.Graph.Token = "token"

	factory, err := NewBackendFactory(cfg, nil, nil)
	require.NoError(t, err)

	backend, err := factory(context.Background(), "default")
	require.NoError(t, err)
	assert.NotNil(t, backend)

	_, err = factory(context.Background(), "work")
	assert.ErrorContains(t, err, `no account "work"`)
}

func TestNewBackendFactory_GraphWithoutToken(t *testing.T) {
	factory, err := NewBackendFactory(testConfig(), nil, nil)
	require.NoError(t, err)

	_, err = factory(context.Background(), "default")
	assert.ErrorContains(t, err, "no Microsoft Graph token")
}

func TestNewBackendFactory_GoogleWithoutTokenFile(t *testing.T) {
	cfg := testConfig()
	cfg.Backend = config.BackendGoogle
	cfg.Google.TokenDir = t.TempDir()

	factory, err := NewBackendFactory(cfg, nil, nil)
	require.NoError(t, err)

	_, err = factory(context.Background(), "work")
	assert.ErrorContains(t, err, `no Google OAuth token for account "work"`)
}

func TestNewBackendFactory_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Backend = "caldav"

	_, err := NewBackendFactory(cfg, nil, nil)
	assert.Error(t, err)
}
