//go:build integration

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/shelfsync/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shelfsync version")
}

func TestLanguagesCommand(t *testing.T) {
	out, err := runCLI(t, "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "Languages: ")
	assert.Contains(t, out, "en")
	assert.Contains(t, out, "OS: windows, mac, linux")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "shelfsync", "config.yaml")

	_, err := runCLI(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	require.FileExists(t, cfgPath)

	_, err = runCLI(t, "--config", cfgPath, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, "--config", cfgPath, "config", "set", "settings.retry", "7")
	require.NoError(t, err)
	_, err = runCLI(t, "--config", cfgPath, "config", "set", "catalog.token", "s3cr3t")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "config", "get", "settings.retry")
	require.NoError(t, err)
	assert.Equal(t, "7", strings.TrimSpace(out))

	out, err = runCLI(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "settings.retry")
	assert.NotContains(t, out, "s3cr3t")

	out, err = runCLI(t, "--config", cfgPath, "config", "show", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "retry: 7")
	assert.NotContains(t, out, "s3cr3t")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	var raw map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Equal(t, 7, raw["settings"]["retry"])
	assert.Equal(t, "s3cr3t", raw["catalog"]["token"])

	_, err = runCLI(t, "--config", cfgPath, "config", "set", "settings.chunk_size_mb", "2")
	assert.Error(t, err)
}

func TestCatalogCommands(t *testing.T) {
	dir := t.TempDir()
	srv := testutil.NewTestServer(t, map[string][]byte{"setup.exe": payload(1024, 1)})
	cfgPath := testutil.SetupTestConfig(t, dir, srv.URL)
	manifest := testutil.WriteManifest(t, dir, manifestYAML(srv, 42, "Gothic",
		[]manifestFile{{name: "setup.exe", language: "en", platform: "windows", size: 1024}},
		nil,
	))

	_, err := runCLI(t, "--config", cfgPath, "catalog", "import", manifest)
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Gothic")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "1.0 KiB")
}
