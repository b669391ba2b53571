package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/lawdesk.db", cfg.Database.Path)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 64, cfg.Workflow.LockStripes)
	assert.False(t, cfg.Workflow.StrictMultipleApproval)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9090
  read_timeout: 5s
database:
  path: ":memory:"
workflow:
  default_main_lawyer_id: 3
  strict_multiple_approval: true
`)
	t.Setenv("LAWDESK_SERVER_PORT", "9191")
	t.Setenv("LAWDESK_WORKFLOW_ROOT_ADMIN_ID", "1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, int64(3), cfg.Workflow.DefaultMainLawyerID)
	assert.Equal(t, int64(1), cfg.Workflow.RootAdminID)
	assert.True(t, cfg.Workflow.StrictMultipleApproval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080, Mode: "release"},
			Database: DatabaseConfig{Path: "x.db"},
			Logger:   LoggerConfig{Format: "console"},
			Workflow: WorkflowConfig{LockStripes: 8},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"no database", func(c *Config) { c.Database.Path = "" }},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }},
		{"negative main lawyer", func(c *Config) { c.Workflow.DefaultMainLawyerID = -1 }},
		{"negative root admin", func(c *Config) { c.Workflow.RootAdminID = -1 }},
		{"no stripes", func(c *Config) { c.Workflow.LockStripes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(`
stages:
  - name: Intake
    approval_type: admin_only
  - name: Research
    approval_type: single
    color: "#0af"
  - name: Archive
    display_order: 9
    approval_type: admin_only
    inactive: true
users:
  - name: Ada Root
    username: ada
    role: admin
  - name: Mara Senior
    username: mara
    role: lawyer
    is_main_lawyer: true
`))
	require.NoError(t, err)
	require.Len(t, seed.Stages, 3)
	assert.Equal(t, 1, seed.Stages[0].DisplayOrder)
	assert.Equal(t, 2, seed.Stages[1].DisplayOrder)
	assert.Equal(t, 9, seed.Stages[2].DisplayOrder)
	assert.True(t, seed.Stages[2].Inactive)
	require.Len(t, seed.Users, 2)
	assert.True(t, seed.Users[1].IsMainLawyer)

	_, err = ParseSeed([]byte("stages:\n  - name: Intake\n    colour: red\n"))
	assert.Error(t, err, "unknown field")

	_, err = ParseSeed([]byte("stages:\n  - approval_type: single\n"))
	assert.Error(t, err, "missing name")

	empty, err := ParseSeed(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Stages)
}

func TestLoadSeed_ShippedFile(t *testing.T) {
	seed, err := LoadSeed(filepath.Join("..", "..", "configs", "seed.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, seed.Stages)
	assert.NotEmpty(t, seed.Users)
}
