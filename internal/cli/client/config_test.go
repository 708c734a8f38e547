package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useConfigPath points the global config at path for the duration of the test.
func useConfigPath(t *testing.T, path string) {
	t.Helper()
	oldGetConfigPath := getConfigPathFunc
	getConfigPathFunc = func() (string, error) {
		return path, nil
	}
	t.Cleanup(func() { getConfigPathFunc = oldGetConfigPath })
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.True(t, strings.HasSuffix(dir, "aula"))
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasSuffix(path, "config.json"))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	useConfigPath(t, filepath.Join(t.TempDir(), "config.json"))

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"api_url":"http://aula:8080","student_id":"s-1"}`), 0600))
	useConfigPath(t, configPath)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "http://aula:8080", config.APIURL)
	assert.Equal(t, "s-1", config.StudentID)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid json}"), 0600))
	useConfigPath(t, configPath)

	config, err := LoadGlobalConfig()
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveGlobalConfig_CreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "aula", "config.json")
	useConfigPath(t, configPath)

	err := SaveGlobalConfig(&GlobalConfig{APIURL: "http://localhost:8080"})
	require.NoError(t, err)

	assert.FileExists(t, configPath)
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSaveGlobalConfig_NilConfig(t *testing.T) {
	err := SaveGlobalConfig(nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config cannot be nil")
}

func TestDeleteGlobalConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0600))
	useConfigPath(t, configPath)

	require.NoError(t, DeleteGlobalConfig())
	assert.NoFileExists(t, configPath)

	// deleting again is not an error
	require.NoError(t, DeleteGlobalConfig())
}

func TestRoundTrip_SaveAndLoad(t *testing.T) {
	useConfigPath(t, filepath.Join(t.TempDir(), "config.json"))

	original := &GlobalConfig{APIURL: "http://aula:9000", StudentID: "student-7"}
	require.NoError(t, SaveGlobalConfig(original))

	loaded, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	data, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"student_id":"student-7"`)
}
