package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	// Run from an empty directory so a developer's local config.yaml cannot
	// leak into the test.
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	manager, err := NewManager()
	require.NoError(t, err)
	return manager
}

func TestNewManager_Defaults(t *testing.T) {
	manager := newTestManager(t)
	cfg := manager.GetConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Feedback.Driver)
	assert.Equal(t, "./data/feedback.db", cfg.Feedback.SQLitePath)
	assert.False(t, cfg.Similarity.Enabled)
	assert.False(t, cfg.Cache.RedisEnabled)
	assert.Equal(t, 1024, cfg.Cache.MaxItems)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestManager_EnvOverride(t *testing.T) {
	t.Setenv("RAREDX_SERVER_PORT", "9091")
	t.Setenv("RAREDX_LOGGING_LEVEL", "debug")

	manager := newTestManager(t)
	cfg := manager.GetConfig()

	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestManager_ValidateDefaults(t *testing.T) {
	manager := newTestManager(t)

	assert.NoError(t, manager.Validate())
}

func TestManager_ValidateRejectsBadPort(t *testing.T) {
	manager := newTestManager(t)
	manager.GetConfig().Server.Port = -1

	assert.Error(t, manager.Validate())
}

func TestManager_ValidateFeedbackDriver(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Manager)
		wantErr bool
	}{
		{
			name:   "sqlite with path",
			mutate: func(m *Manager) {},
		},
		{
			name: "sqlite without path",
			mutate: func(m *Manager) {
				m.GetConfig().Feedback.SQLitePath = ""
			},
			wantErr: true,
		},
		{
			name: "postgres with connection details",
			mutate: func(m *Manager) {
				m.GetConfig().Feedback.Driver = "postgres"
			},
		},
		{
			name: "postgres without host",
			mutate: func(m *Manager) {
				m.GetConfig().Feedback.Driver = "postgres"
				m.GetConfig().Database.Host = ""
			},
			wantErr: true,
		},
		{
			name: "disabled store",
			mutate: func(m *Manager) {
				m.GetConfig().Feedback.Driver = "none"
			},
		},
		{
			name: "unknown driver",
			mutate: func(m *Manager) {
				m.GetConfig().Feedback.Driver = "cassandra"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := newTestManager(t)
			tt.mutate(manager)

			err := manager.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManager_ValidateSimilarityNeedsURL(t *testing.T) {
	manager := newTestManager(t)
	manager.GetConfig().Similarity.Enabled = true
	manager.GetConfig().Similarity.EmbedBaseURL = ""

	assert.Error(t, manager.Validate())
}

func TestManager_ValidateLogLevel(t *testing.T) {
	manager := newTestManager(t)
	manager.GetConfig().Logging.Level = "verbose"

	assert.Error(t, manager.Validate())
}

func TestConnectionString(t *testing.T) {
	manager := newTestManager(t)

	dsn := manager.GetDatabaseConnectionString()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=raredx")
	assert.Contains(t, dsn, "sslmode=disable")
}
