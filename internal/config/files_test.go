package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFileName(t *testing.T) {
	assert.Equal(t, "seatcall_config.yaml", envFileName("seatcall_config", "", ".yaml"))
	assert.Equal(t, "oauthClient.prod.json", envFileName("oauthClient", "prod", ".json"))
}

func TestLocateEnvFile_PrefersWorkingDirectory(t *testing.T) {
	workDir := t.TempDir()
	homeDir := t.TempDir()
	t.Chdir(workDir)
	t.Setenv("HOME", homeDir)

	require.NoError(t, os.WriteFile(filepath.Join(homeDir, "oauthClient.test.json"), []byte("{}"), 0600))

	path, err := locateEnvFile("oauthClient", "test", ".json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "oauthClient.test.json"), path)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "oauthClient.test.json"), []byte("{}"), 0600))

	path, err = locateEnvFile("oauthClient", "test", ".json")
	require.NoError(t, err)
	assert.Equal(t, "oauthClient.test.json", path)

	_, err = locateEnvFile("oauthClient", "staging", ".json")
	assert.ErrorContains(t, err, "oauthClient.staging.json not found")
}

func TestDecodeFile_NamesTheFileKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1`), 0600))

	var v map[string]int
	err := decodeFile(path, "oauth client", json.Unmarshal, &v)
	assert.ErrorContains(t, err, "failed to parse oauth client file")

	err = decodeFile(filepath.Join(t.TempDir(), "missing.json"), "oauth client", json.Unmarshal, &v)
	assert.ErrorContains(t, err, "failed to read oauth client file")
}
