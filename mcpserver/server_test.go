package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/devanik21/lessonbox/config"
	"github.com/devanik21/lessonbox/policy"
	"github.com/devanik21/lessonbox/sandbox"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport: "stdio",
			HTTPPort:  8080,
		},
		Sandbox: config.SandboxConfig{
			Backend:   "goja",
			PythonBin: "python3",
		},
		Limits: config.LimitsConfig{
			MaxSourceChars: 1000,
			TimeoutSec:     5,
		},
		Logging: config.LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
	}
}

func testSandbox(t *testing.T) *sandbox.Sandbox {
	t.Helper()
	logger := zaptest.NewLogger(t)
	registry := policy.NewRegistry(policy.Default(), policy.DefaultOverrides())
	runner := sandbox.NewGojaRunner(logger)
	return sandbox.New(registry, sandbox.NewGovernor(runner, logger), logger)
}

func TestNewMCPServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	box := testSandbox(t)

	server, err := New(cfg, logger, box)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, cfg, server.config)
	assert.Equal(t, logger, server.logger)
	assert.Equal(t, box, server.box)
	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.GetMCPServer())
}

func TestContextInfoCoversRegistry(t *testing.T) {
	box := testSandbox(t)

	registry := box.Registry()
	names := registry.Contexts()
	require.NotEmpty(t, names)

	for _, name := range names {
		pol := registry.Resolve(name)
		assert.Equal(t, name, pol.Context)
		assert.Positive(t, pol.MaxSourceChars)
		assert.Positive(t, pol.MaxDuration)
	}
}
