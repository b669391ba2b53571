package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	seed, err := filepath.Abs("../../configs/seed.yaml")
	require.NoError(t, err)

	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`server:
  port: 18080
  mode: test
database:
  path: %s
logger:
  level: info
  format: json
workflow:
  seed_file: %s
  lock_stripes: 4
`, filepath.Join(dir, "lawdesk.db"), seed)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_MigrateSeedAndList(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "migrate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "applied 1 migration(s)")

	out, err = run(t, "migrate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "applied 0 migration(s)")

	out, err = run(t, "seed", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "created 7 stage(s) and 4 user(s)")

	out, err = run(t, "seed", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "created 0 stage(s) and 0 user(s)")

	out, err = run(t, "stages", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Partner review")
	assert.Contains(t, out, "admin_only")

	out, err = run(t, "users", "--config", cfg, "--role", "lawyer")
	require.NoError(t, err)
	assert.Contains(t, out, "senior")
	assert.Contains(t, out, "associate")
	assert.NotContains(t, out, "Practice Administrator")

	out, err = run(t, "tasks", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(out), "TOTAL")
}

func TestCLI_RejectsBadInput(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "tasks", "--config", cfg, "--status", "archived")
	assert.Error(t, err)

	_, err = run(t, "stages", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
