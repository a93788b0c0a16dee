package utils

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestLoadEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdirT(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MODELFORGE_ENV_TEST=from-dotenv\n"), 0o644))
	// registers cleanup; godotenv only fills unset variables
	t.Setenv("MODELFORGE_ENV_TEST", "")
	require.NoError(t, os.Unsetenv("MODELFORGE_ENV_TEST"))
	logs := captureLog(t)

	assert.True(t, LoadEnv())
	assert.Equal(t, "from-dotenv", os.Getenv("MODELFORGE_ENV_TEST"))
	assert.Empty(t, logs.String())
}

func TestLoadEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	chdirT(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.env"), []byte("MODELFORGE_ENV_TEST=from-file\n"), 0o644))
	t.Setenv("MODELFORGE_ENV_TEST", "from-shell")
	captureLog(t)

	assert.True(t, LoadEnv("missing.env", "local.env"))
	assert.Equal(t, "from-shell", os.Getenv("MODELFORGE_ENV_TEST"))
}

func TestLoadEnvWithoutFile(t *testing.T) {
	chdirT(t, t.TempDir())
	logs := captureLog(t)

	assert.False(t, LoadEnv())
	assert.Contains(t, logs.String(), "No .env file found")
	assert.Contains(t, logs.String(), "DATABASE_URL")
	assert.Contains(t, logs.String(), "modelforge.yaml")
}
